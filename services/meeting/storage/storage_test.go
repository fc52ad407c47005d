package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
)

func seed(t *testing.T, s Storage, titles ...string) []*entity.Meeting {
	t.Helper()
	ctx := context.Background()
	out := make([]*entity.Meeting, 0, len(titles))
	for _, title := range titles {
		m, err := s.CreateMeeting(ctx, &entity.Meeting{
			Title:  title,
			Type:   "team_meeting",
			Source: entity.SourceUpload,
			Status: entity.StatusCompleted,
		})
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestCreateMeeting(t *testing.T) {
	s := New()
	ctx := context.Background()

	m, err := s.CreateMeeting(ctx, &entity.Meeting{Title: "Standup"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.False(t, m.Timestamp.IsZero(), "a zero timestamp is filled in")

	m2, err := s.CreateMeeting(ctx, &entity.Meeting{Title: "Retro"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), m2.ID, "ids are assigned sequentially")
}

func TestGetMeeting(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := seed(t, s, "Standup")[0]

	got, err := s.GetMeeting(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)

	_, err = s.GetMeeting(ctx, 999)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := seed(t, s, "Standup")[0]

	got, err := s.GetMeeting(ctx, created.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.GetMeeting(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", again.Title, "callers must not reach the stored record")
}

func TestListMeetings(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s, "a", "b", "c", "d", "e")

	t.Run("full list in id order", func(t *testing.T) {
		all, err := s.ListMeetings(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 5)
		assert.Equal(t, "a", all[0].Title)
		assert.Equal(t, "e", all[4].Title)
	})

	t.Run("skip and limit", func(t *testing.T) {
		page, err := s.ListMeetings(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "b", page[0].Title)
		assert.Equal(t, "c", page[1].Title)
	})

	t.Run("skip past the end", func(t *testing.T) {
		page, err := s.ListMeetings(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("negative skip treated as zero", func(t *testing.T) {
		page, err := s.ListMeetings(ctx, -3, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "a", page[0].Title)
	})
}

func TestUpdateMeeting(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := seed(t, s, "Standup")[0]

	created.Status = entity.StatusError
	created.AIOutput = &entity.AIOutput{Summary: "updated"}
	require.NoError(t, s.UpdateMeeting(ctx, created))

	got, err := s.GetMeeting(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusError, got.Status)
	assert.Equal(t, "updated", got.AIOutput.Summary)

	err = s.UpdateMeeting(ctx, &entity.Meeting{ID: 999})
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestDeleteMeeting(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := seed(t, s, "Standup")[0]

	deleted, err := s.DeleteMeeting(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", deleted.Title, "delete returns the removed record")

	_, err = s.GetMeeting(ctx, created.ID)
	assert.ErrorIs(t, err, ErrMeetingNotFound)

	_, err = s.DeleteMeeting(ctx, created.ID)
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/SAP-F-2025/story-survey-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSessionMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionMemory()

	session := &models.Session{
		ID:        "s-1",
		Variant:   models.VariantLikert,
		Trials:    []models.Trial{{ID: "t1", Answers: []string{"a", "b"}}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	session.SetResponse("likert-1-1", "3")
	require.NoError(t, repo.Create(ctx, session))
	assert.ErrorIs(t, repo.Create(ctx, session), repositories.ErrDuplicate)

	got, err := repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	got.SetResponse("likert-1-1", "5")
	got.Trials[0].Answers[0] = "changed"
	again, err := repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	v, _ := again.Response("likert-1-1")
	assert.Equal(t, "3", v)
	assert.Equal(t, "a", again.Trials[0].Answers[0])

	got.Cursor = 4
	require.NoError(t, repo.Update(ctx, got))
	again, err = repo.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 4, again.Cursor)

	_, err = repo.GetByID(ctx, "s-missing")
	assert.True(t, repositories.IsNotFoundError(err))
	assert.ErrorIs(t, repo.Update(ctx, &models.Session{ID: "s-missing"}), repositories.ErrRecordNotFound)
}

func TestSubmissionMemory_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionMemory()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []*models.SubmissionRecord{
		{SessionID: "a", ParticipantID: "p2", StudyID: "study-1", Variant: models.VariantLikert, SubmittedAt: base.Add(2 * time.Minute), Payload: datatypes.JSON(`{}`)},
		{SessionID: "b", ParticipantID: "p1", StudyID: "study-1", Variant: models.VariantLikert, SubmittedAt: base, Payload: datatypes.JSON(`{}`)},
		{SessionID: "c", ParticipantID: "p3", StudyID: "study-2", Variant: models.VariantMCQ, SubmittedAt: base.Add(time.Minute), Payload: datatypes.JSON(`{}`)},
	}
	for _, r := range records {
		require.NoError(t, repo.Create(ctx, r))
	}
	assert.Equal(t, uint(1), records[0].ID)

	dup := &models.SubmissionRecord{SessionID: "a", Payload: datatypes.JSON(`{}`)}
	assert.True(t, repositories.IsDuplicateError(repo.Create(ctx, dup)))

	exists, err := repo.ExistsBySession(ctx, "b")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsBySession(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, exists)

	tests := []struct {
		name    string
		filters repositories.SubmissionFilters
		want    []string
		total   int64
	}{
		{name: "all by submission time", filters: repositories.SubmissionFilters{}, want: []string{"b", "c", "a"}, total: 3},
		{name: "study filter", filters: repositories.SubmissionFilters{StudyID: "study-1"}, want: []string{"b", "a"}, total: 2},
		{name: "participant desc", filters: repositories.SubmissionFilters{SortBy: "participant_id", SortOrder: "desc"}, want: []string{"c", "a", "b"}, total: 3},
		{name: "paged", filters: repositories.SubmissionFilters{Limit: 1, Offset: 1}, want: []string{"c"}, total: 3},
		{name: "variant", filters: repositories.SubmissionFilters{Variant: "mcq"}, want: []string{"c"}, total: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.SessionID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

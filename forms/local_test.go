package forms

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amonks/cohort/schedule"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l := NewLocal(t.TempDir())
	l.now = func() time.Time { return time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC) }
	return l
}

func TestLocal_Lifecycle(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	form, err := l.CreateForm(ctx, Spec{
		Kind:  "class",
		Title: "  Cohort 7   attendance 18/06/2025 ",
		Date:  schedule.MustParseDate("18/06/2025"),
	})
	require.NoError(t, err)
	_, err = uuid.Parse(form.ID)
	require.NoError(t, err, "form IDs are UUIDs")
	require.Equal(t, "Cohort 7 attendance 18/06/2025", form.Title)
	require.True(t, strings.HasPrefix(form.URL, "file://"))
	require.False(t, form.Published)

	require.ErrorIs(t, l.AddResponse(form.ID, Response{Email: "a@example.com"}), ErrNotPublished)

	require.NoError(t, l.PublishForm(ctx, form.ID))
	require.NoError(t, l.ShareForm(ctx, form.ID, []string{"A@example.com", "b@example.com"}))
	require.NoError(t, l.ShareForm(ctx, form.ID, []string{"a@example.com "}))

	stored, err := l.Form(form.ID)
	require.NoError(t, err)
	require.True(t, stored.Published)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, stored.SharedWith)
	require.Equal(t, form.Date, stored.Date)

	rows, err := l.FetchResponses(ctx, form.ID)
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, l.AddResponse(form.ID, Response{Email: " A@Example.com", Status: "P"}))
	require.NoError(t, l.AddResponse(form.ID, Response{Email: "b@example.com", Status: "excused"}))

	rows, err = l.FetchResponses(ctx, form.ID)
	require.NoError(t, err)
	require.Equal(t, []Response{
		{Email: "a@example.com", Status: "P"},
		{Email: "b@example.com", Status: "excused"},
	}, rows)
}

func TestLocal_UnknownForm(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	require.ErrorIs(t, l.PublishForm(ctx, "missing"), ErrFormNotFound)
	_, err := l.FetchResponses(ctx, "missing")
	require.ErrorIs(t, err, ErrFormNotFound)
	_, err = l.Form("../escape")
	require.ErrorIs(t, err, ErrFormNotFound)
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestLocal(t)

	_, err := l.CreateForm(ctx, Spec{Title: "x"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocal_List(t *testing.T) {
	ctx := context.Background()
	l := newTestLocal(t)

	forms, err := l.List()
	require.NoError(t, err)
	require.Empty(t, forms)

	first, err := l.CreateForm(ctx, Spec{Kind: "cds", Title: "CDS day"})
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2025, 6, 19, 9, 0, 0, 0, time.UTC) }
	second, err := l.CreateForm(ctx, Spec{Kind: "update", Title: "Onboarding"})
	require.NoError(t, err)

	forms, err = l.List()
	require.NoError(t, err)
	require.Len(t, forms, 2)
	require.Equal(t, first.ID, forms[0].ID)
	require.Equal(t, second.ID, forms[1].ID)
}

func TestLocal_RequiresTitle(t *testing.T) {
	_, err := newTestLocal(t).CreateForm(context.Background(), Spec{Title: "   "})
	require.Error(t, err)
}

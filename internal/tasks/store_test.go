package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/existflow/protodo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	list      []model.Task
	listErr   error
	created   model.Task
	createErr error

	creates int
	drafts  []model.Draft

	// hook runs inside CreateTask, while the request is "in flight"
	hook func()
}

func (r *fakeRemote) ListTasks(context.Context) ([]model.Task, error) {
	return r.list, r.listErr
}

func (r *fakeRemote) CreateTask(_ context.Context, d model.Draft) (model.Task, error) {
	r.creates++
	r.drafts = append(r.drafts, d)
	if r.hook != nil {
		r.hook()
	}
	if r.createErr != nil {
		return model.Task{}, r.createErr
	}
	return r.created, nil
}

// syncRemote also stores edits and deletions.
type syncRemote struct {
	fakeRemote
	updateErr error
	deleteErr error
	updated   []model.Task
	deleted   []string
}

func (r *syncRemote) UpdateTask(_ context.Context, t model.Task) error {
	r.updated = append(r.updated, t)
	return r.updateErr
}

func (r *syncRemote) DeleteTask(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return r.deleteErr
}

func seeded(t *testing.T, remote Remote, items ...model.Task) *Store {
	t.Helper()
	s := NewStore(remote)
	require.NoError(t, s.Seed(items))
	return s
}

func ids(items []model.Task) []string {
	out := make([]string, len(items))
	for i, t := range items {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "Buy milk"},
		model.Task{ID: "2", Title: "Pay bills", Completed: true},
	)

	assert.Equal(t, []string{"1"}, ids(s.Filter("milk", model.FilterAll)))
	assert.Equal(t, []string{"2"}, ids(s.Filter("", model.FilterCompleted)))
	assert.Equal(t, []string{"1"}, ids(s.Filter("", model.FilterActive)))
	assert.Equal(t, []string{"1", "2"}, ids(s.Filter("", model.FilterAll)))
	assert.Equal(t, 2, len(s.Items()), "filter never mutates the list")
}

func TestFilterMatchesDescriptionCaseInsensitively(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "Groceries", Description: "Milk, eggs"},
		model.Task{ID: "2", Title: "Call MOM"},
		model.Task{ID: "3", Title: "Bills"},
	)

	assert.Equal(t, []string{"1"}, ids(s.Filter("  MILK ", model.FilterAll)))
	assert.Equal(t, []string{"2"}, ids(s.Filter("mom", model.FilterAll)))
	assert.Empty(t, s.Filter("milk", model.FilterCompleted))
}

func TestFilterSeesMutations(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "Buy milk"},
		model.Task{ID: "2", Title: "Pay bills"},
	)
	ctx := context.Background()

	assert.Equal(t, []string{"1", "2"}, ids(s.Filter("", model.FilterActive)))

	_, err := s.ToggleCompleted(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(s.Filter("", model.FilterActive)), "memo is invalidated")

	got := s.Filter("", model.FilterActive)
	got[0].Title = "changed"
	assert.Equal(t, "Pay bills", s.Filter("", model.FilterActive)[0].Title, "callers get a copy")
}

func TestStats(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "a"},
		model.Task{ID: "2", Title: "b", Completed: true},
		model.Task{ID: "3", Title: "c"},
		model.Task{ID: "4", Title: "d"},
	)
	assert.Equal(t, model.Stats{Total: 4, Active: 3, Completed: 1}, s.Stats())
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	remote := &fakeRemote{}
	s := seeded(t, remote, model.Task{ID: "1", Title: "a"})
	before := s.Items()

	for _, title := range []string{"", "   "} {
		_, err := s.Create(context.Background(), model.Draft{Title: title})
		assert.ErrorIs(t, err, ErrEmptyTitle)
	}

	assert.Equal(t, 0, remote.creates, "no network call")
	assert.Equal(t, before, s.Items(), "no mutation")
}

func TestCreateAppendsAndReconcilesID(t *testing.T) {
	remote := &fakeRemote{created: model.Task{ID: "srv-9", Title: "Test", DueDate: day("2024-01-15")}}
	s := seeded(t, remote, model.Task{ID: "1", Title: "a"})

	var inFlight []model.Task
	remote.hook = func() { inFlight = s.Items() }

	created, err := s.Create(context.Background(), model.Draft{Title: " Test ", Priority: model.PriorityHigh})
	require.NoError(t, err)

	require.Len(t, inFlight, 2, "task is visible before the server answers")
	assert.True(t, IsProvisional(inFlight[1].ID))

	assert.Equal(t, "srv-9", created.ID)
	assert.Equal(t, "Test", created.Title)
	assert.Equal(t, model.PriorityHigh, created.Priority)
	assert.False(t, created.Completed)
	assert.Equal(t, "2024-01-15", model.FormatDate(created.DueDate), "server default due date is adopted")

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, created, items[1])
	assert.Equal(t, "Test", remote.drafts[0].Title, "draft is trimmed before sending")
}

func TestCreateWithoutServerIDKeepsProvisional(t *testing.T) {
	remote := &fakeRemote{created: model.Task{Title: "Test"}}
	s := seeded(t, remote)

	created, err := s.Create(context.Background(), model.Draft{Title: "Test"})
	require.NoError(t, err)
	assert.True(t, IsProvisional(created.ID))
	assert.Len(t, s.Items(), 1)
}

func TestCreateRollsBackOnFailure(t *testing.T) {
	boom := errors.New("boom")
	remote := &fakeRemote{createErr: boom}
	s := seeded(t, remote, model.Task{ID: "1", Title: "a"})

	_, err := s.Create(context.Background(), model.Draft{Title: "Test"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"1"}, ids(s.Items()))
}

func TestCreateAfterReloadDoesNotDuplicate(t *testing.T) {
	remote := &fakeRemote{created: model.Task{ID: "7", Title: "Test"}}
	s := seeded(t, remote)
	remote.list = []model.Task{{ID: "7", Title: "Test"}}
	remote.hook = func() { require.NoError(t, s.Load(context.Background())) }

	created, err := s.Create(context.Background(), model.Draft{Title: "Test"})
	require.NoError(t, err)
	assert.Equal(t, "7", created.ID)
	assert.Equal(t, []string{"7"}, ids(s.Items()))
}

func TestCreateOffline(t *testing.T) {
	s := seeded(t, nil)

	created, err := s.Create(context.Background(), model.Draft{Title: "Test"})
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Len(t, s.Items(), 1)
}

func TestToggleCompleted(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "a"},
		model.Task{ID: "2", Title: "b", Completed: true},
	)
	ctx := context.Background()
	before := s.Items()

	found, err := s.ToggleCompleted(ctx, "1")
	require.NoError(t, err)
	assert.True(t, found)
	got, _ := s.Get("1")
	assert.True(t, got.Completed)

	_, err = s.ToggleCompleted(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, before, s.Items(), "toggling twice restores the original state")

	found, err = s.ToggleCompleted(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, s.Items())
}

func TestUpdatePreservesIDAndCompletion(t *testing.T) {
	s := seeded(t, nil, model.Task{ID: "1", Title: "a", Completed: true})

	found, err := s.Update(context.Background(), "1", model.Draft{
		Title: "new title", Description: "more", Priority: model.PriorityLow, DueDate: day("2024-02-01"),
	})
	require.NoError(t, err)
	assert.True(t, found)

	got, _ := s.Get("1")
	assert.Equal(t, "1", got.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, model.PriorityLow, got.Priority)

	found, err = s.Update(context.Background(), "nope", model.Draft{Title: "x"})
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Update(context.Background(), "1", model.Draft{Title: " "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestDelete(t *testing.T) {
	s := seeded(t, nil,
		model.Task{ID: "1", Title: "a"},
		model.Task{ID: "2", Title: "b"},
		model.Task{ID: "3", Title: "c"},
	)
	ctx := context.Background()

	found, err := s.Delete(ctx, "2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"1", "3"}, ids(s.Items()))

	found, err = s.Delete(ctx, "2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"1", "3"}, ids(s.Items()))
}

func TestRemoteSyncRollsBack(t *testing.T) {
	boom := errors.New("boom")
	remote := &syncRemote{updateErr: boom, deleteErr: boom}
	s := seeded(t, remote,
		model.Task{ID: "1", Title: "a"},
		model.Task{ID: "2", Title: "b"},
		model.Task{ID: "3", Title: "c"},
	)
	ctx := context.Background()
	before := s.Items()

	_, err := s.ToggleCompleted(ctx, "2")
	assert.ErrorIs(t, err, boom)
	_, err = s.Update(ctx, "2", model.Draft{Title: "bb"})
	assert.ErrorIs(t, err, boom)
	_, err = s.Delete(ctx, "2")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, before, s.Items(), "every failed change is undone in place")
	assert.Len(t, remote.updated, 2)
	assert.Equal(t, []string{"2"}, remote.deleted)
}

func TestRemoteSyncSuccess(t *testing.T) {
	remote := &syncRemote{}
	s := seeded(t, remote, model.Task{ID: "1", Title: "a"})
	ctx := context.Background()

	_, err := s.ToggleCompleted(ctx, "1")
	require.NoError(t, err)
	require.Len(t, remote.updated, 1)
	assert.True(t, remote.updated[0].Completed)

	_, err = s.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, s.Items())
}

func TestLoad(t *testing.T) {
	remote := &fakeRemote{list: []model.Task{{ID: "1", Title: "a"}}}
	s := NewStore(remote)

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.Loaded())
	assert.NoError(t, s.Err())
	assert.Equal(t, []string{"1"}, ids(s.Items()))

	boom := errors.New("boom")
	remote.listErr = boom
	assert.ErrorIs(t, s.Load(context.Background()), boom)
	assert.Empty(t, s.Items(), "no partial data after a failed load")
	assert.False(t, s.Loaded())
	assert.ErrorIs(t, s.Err(), boom)

	remote.listErr = nil
	remote.list = nil
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items())
	assert.NoError(t, s.Err())
}

func TestLoadOffline(t *testing.T) {
	assert.ErrorIs(t, NewStore(nil).Load(context.Background()), ErrNoRemote)
}

func TestSeedValidates(t *testing.T) {
	s := NewStore(nil)
	assert.Error(t, s.Seed([]model.Task{{ID: "1", Title: "a"}, {ID: "1", Title: "b"}}))
	assert.Error(t, s.Seed([]model.Task{{ID: "", Title: "a"}}))
	assert.ErrorIs(t, s.Seed([]model.Task{{ID: "1", Title: " "}}), ErrEmptyTitle)
	assert.False(t, s.Loaded())

	require.NoError(t, s.Seed(DemoTasks()))
	assert.Equal(t, model.Stats{Total: 4, Active: 3, Completed: 1}, s.Stats())
}

func TestReset(t *testing.T) {
	s := seeded(t, nil, model.Task{ID: "1", Title: "a"})
	s.Reset()
	assert.Empty(t, s.Items())
	assert.False(t, s.Loaded())
	assert.Equal(t, model.Stats{}, s.Stats())
}

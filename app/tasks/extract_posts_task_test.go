package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/extract"
	"github.com/rpgmp3/rpgstats/app/infer"
	"github.com/rpgmp3/rpgstats/app/refdata"
)

type mockPostRepo struct {
	backlog     []database.PostForExtraction
	updates     map[string]database.PostUpdate
	errors      map[string]string
	selectCalls int
}

func newMockPostRepo(urls ...string) *mockPostRepo {
	repo := &mockPostRepo{
		updates: make(map[string]database.PostUpdate),
		errors:  make(map[string]string),
	}
	for _, u := range urls {
		repo.backlog = append(repo.backlog, database.PostForExtraction{URL: u})
	}
	return repo
}

func (m *mockPostRepo) UpsertPost(url string, lastmod *time.Time) error {
	return nil
}

func (m *mockPostRepo) GetPost(url string) (*database.Post, error) {
	return nil, nil
}

func (m *mockPostRepo) GetPostCount() (int, error) {
	return len(m.backlog), nil
}

func (m *mockPostRepo) GetPostsNeedingExtraction(limit int) ([]database.PostForExtraction, error) {
	m.selectCalls++
	if limit > len(m.backlog) {
		limit = len(m.backlog)
	}
	batch := make([]database.PostForExtraction, limit)
	copy(batch, m.backlog[:limit])
	return batch, nil
}

func (m *mockPostRepo) ApplyExtraction(url string, update database.PostUpdate) error {
	m.updates[url] = update
	m.removeFromBacklog(url)
	return nil
}

func (m *mockPostRepo) MarkExtractError(url string, extractError string) error {
	m.errors[url] = extractError
	m.removeFromBacklog(url)
	return nil
}

// An attempt stamp takes the post out of the backlog, matching the
// extracted_at IS NULL selection predicate.
func (m *mockPostRepo) removeFromBacklog(url string) {
	for i, post := range m.backlog {
		if post.URL == url {
			m.backlog = append(m.backlog[:i], m.backlog[i+1:]...)
			return
		}
	}
}

const testPostHTML = `<html><body>
<h1>Kingmaker Session 44</h1>
<div class="cat-links">
  <a href="/cat/pathfinder">Pathfinder</a>
  <a href="/cat/kingmaker">Kingmaker (The Brute Squad)</a>
</div>
<p><a href="https://cdn.example.com/kingmaker-44.mp3">Download</a> Duration: 48:12 — 69.6MB</p>
</body></html>`

func newTestTask(repo database.PostRepository, batchSize int, fetchDelay time.Duration,
	maxBatches, maxPosts int) *ExtractPostsTask {
	engine := infer.NewEngine(&refdata.Store{
		Groups:          []string{"The Brute Squad"},
		Systems:         []string{"Pathfinder"},
		CampaignAliases: map[string]string{},
	})
	return NewExtractPostsTask(http.DefaultClient, extract.NewExtractor(), engine,
		repo, "rpgstats-test/1.0", batchSize, fetchDelay, maxBatches, maxPosts)
}

func TestExtractPostsTaskDrainsBacklog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPostHTML)
	}))
	defer server.Close()

	repo := newMockPostRepo(
		server.URL+"/kingmaker-session-44/",
		server.URL+"/kingmaker-session-45/",
		server.URL+"/kingmaker-session-46/",
	)

	task := newTestTask(repo, 2, 0, 0, 0)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(repo.updates) != 3 {
		t.Fatalf("Expected 3 updates, got %d", len(repo.updates))
	}
	if len(repo.backlog) != 0 {
		t.Errorf("Expected empty backlog, got %d remaining", len(repo.backlog))
	}
	if len(repo.errors) != 0 {
		t.Errorf("Expected no errors, got %v", repo.errors)
	}

	update := repo.updates[server.URL+"/kingmaker-session-44/"]
	if update.Title != "Kingmaker Session 44" {
		t.Errorf("Expected title 'Kingmaker Session 44', got '%s'", update.Title)
	}
	if update.GroupName != "The Brute Squad" {
		t.Errorf("Expected group 'The Brute Squad', got '%s'", update.GroupName)
	}
	if update.SystemName != "Pathfinder" {
		t.Errorf("Expected system 'Pathfinder', got '%s'", update.SystemName)
	}
	if update.CampaignName != "Kingmaker" {
		t.Errorf("Expected campaign 'Kingmaker', got '%s'", update.CampaignName)
	}
	if update.DurationSeconds == nil || *update.DurationSeconds != 2892 {
		t.Errorf("Expected duration 2892, got %v", update.DurationSeconds)
	}
}

func TestExtractPostsTaskSecondRunSelectsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPostHTML)
	}))
	defer server.Close()

	repo := newMockPostRepo(server.URL + "/kingmaker-session-44/")

	task := newTestTask(repo, 5, 0, 0, 0)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	callsAfterFirst := repo.selectCalls

	second := newTestTask(repo, 5, 0, 0, 0)
	second.Start()
	if err := second.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if repo.selectCalls != callsAfterFirst+1 {
		t.Errorf("Expected exactly one selection on second run, got %d", repo.selectCalls-callsAfterFirst)
	}
	if len(repo.updates) != 1 {
		t.Errorf("Expected 1 update total across both runs, got %d", len(repo.updates))
	}
}

func TestExtractPostsTaskFailureIsolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken-post/" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPostHTML)
	}))
	defer server.Close()

	repo := newMockPostRepo(
		server.URL+"/broken-post/",
		server.URL+"/kingmaker-session-44/",
	)

	task := newTestTask(repo, 10, 0, 0, 0)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(repo.updates) != 1 {
		t.Errorf("Expected 1 update, got %d", len(repo.updates))
	}
	if len(repo.errors) != 1 {
		t.Fatalf("Expected 1 recorded error, got %d", len(repo.errors))
	}
	if _, ok := repo.errors[server.URL+"/broken-post/"]; !ok {
		t.Error("Expected error recorded for the broken post")
	}
	if len(repo.backlog) != 0 {
		t.Errorf("Expected empty backlog, got %d remaining", len(repo.backlog))
	}
}

func TestExtractPostsTaskMaxPostsCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPostHTML)
	}))
	defer server.Close()

	repo := newMockPostRepo(
		server.URL+"/post-1/",
		server.URL+"/post-2/",
		server.URL+"/post-3/",
		server.URL+"/post-4/",
		server.URL+"/post-5/",
	)

	task := newTestTask(repo, 2, 0, 0, 3)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(repo.updates) != 3 {
		t.Errorf("Expected 3 updates under the post cap, got %d", len(repo.updates))
	}
	if len(repo.backlog) != 2 {
		t.Errorf("Expected 2 posts left in backlog, got %d", len(repo.backlog))
	}
}

func TestExtractPostsTaskMaxBatchesCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, testPostHTML)
	}))
	defer server.Close()

	repo := newMockPostRepo(
		server.URL+"/post-1/",
		server.URL+"/post-2/",
		server.URL+"/post-3/",
		server.URL+"/post-4/",
		server.URL+"/post-5/",
	)

	task := newTestTask(repo, 2, 0, 1, 0)
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(repo.updates) != 2 {
		t.Errorf("Expected 2 updates after one batch, got %d", len(repo.updates))
	}
	if len(repo.backlog) != 3 {
		t.Errorf("Expected 3 posts left in backlog, got %d", len(repo.backlog))
	}
}

func TestExtractPostsTaskCancelledContext(t *testing.T) {
	repo := newMockPostRepo("http://example.com/post/")

	task := newTestTask(repo, 10, 0, 0, 0)
	task.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); err == nil {
		t.Error("Expected context error, got nil")
	}
	if len(repo.updates) != 0 {
		t.Errorf("Expected no updates after cancellation, got %d", len(repo.updates))
	}
}

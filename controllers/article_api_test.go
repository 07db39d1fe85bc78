package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
)

func TestCreateArticleDerivesUniqueSlugs(t *testing.T) {
	r := setupServer(t)

	payload := map[string]interface{}{
		"title":   "Breaking News",
		"content": "Something happened.",
		"author":  "newsdesk",
	}

	w := doJSON(t, r, http.MethodPost, "/api/articles", "", payload)
	wantStatus(t, w, http.StatusCreated)
	first := decodeBody(t, w)["article"].(map[string]interface{})
	if first["slug"] != "breaking-news" {
		t.Fatalf("slug=%v, want breaking-news", first["slug"])
	}
	if first["category"] != "General" {
		t.Fatalf("category=%v, want General", first["category"])
	}

	w = doJSON(t, r, http.MethodPost, "/api/articles", "", payload)
	wantStatus(t, w, http.StatusCreated)
	second := decodeBody(t, w)["article"].(map[string]interface{})
	if second["slug"] != "breaking-news-1" {
		t.Fatalf("slug=%v, want breaking-news-1", second["slug"])
	}
}

func TestGetArticleCountsViews(t *testing.T) {
	r := setupServer(t)

	article := models.Article{Title: "View me", Content: "body text here", Author: "a"}
	if err := config.DB.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	for i := 1; i <= 3; i++ {
		w := doJSON(t, r, http.MethodGet, "/api/articles/"+article.Slug, "", nil)
		wantStatus(t, w, http.StatusOK)
		body := decodeBody(t, w)
		got := body["article"].(map[string]interface{})["views"].(float64)
		if int(got) != i {
			t.Fatalf("views after %d reads = %d", i, int(got))
		}
	}

	var stored models.Article
	if err := config.DB.First(&stored, article.ID).Error; err != nil {
		t.Fatalf("reload article: %v", err)
	}
	if stored.Views != 3 {
		t.Fatalf("stored views=%d, want 3", stored.Views)
	}

	w := doJSON(t, r, http.MethodGet, "/api/articles/no-such-slug", "", nil)
	wantStatus(t, w, http.StatusNotFound)
}

// The counter bump runs in the storage layer, so racing readers must not
// lose updates.
func TestGetArticleCountsViewsConcurrently(t *testing.T) {
	r := setupServer(t)

	article := models.Article{Title: "Hot take", Content: "c", Author: "a"}
	if err := config.DB.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	// sqlite allows a single writer; serialize the pool while the handler
	// goroutines race above it
	sqlDB, err := config.DB.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	const readers = 16
	failures := make(chan string, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/articles/"+article.Slug, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				failures <- w.Body.String()
			}
		}()
	}
	wg.Wait()
	close(failures)
	for f := range failures {
		t.Fatalf("concurrent read failed: %s", f)
	}

	var stored models.Article
	if err := config.DB.First(&stored, article.ID).Error; err != nil {
		t.Fatalf("reload article: %v", err)
	}
	if stored.Views != readers {
		t.Fatalf("stored views=%d, want %d (lost updates)", stored.Views, readers)
	}
}

func TestHomeReportsStorageFailure(t *testing.T) {
	r := setupServer(t)

	if err := config.DB.Migrator().DropTable(&models.Survey{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/home", "", nil)
	wantStatus(t, w, http.StatusInternalServerError)
}

func TestGetArticleReadingMetadata(t *testing.T) {
	r := setupServer(t)

	article := models.Article{
		Title: "Tagged", Content: "one two three four five",
		Author: "a", Tags: "#go, backend; web",
	}
	if err := config.DB.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/articles/"+article.Slug, "", nil)
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)

	if body["word_count"].(float64) != 5 {
		t.Fatalf("word_count=%v, want 5", body["word_count"])
	}
	if body["reading_time"].(float64) != 1 {
		t.Fatalf("reading_time=%v, want 1", body["reading_time"])
	}
	tags := body["tags_list"].([]interface{})
	if len(tags) != 3 || tags[0] != "go" || tags[1] != "backend" || tags[2] != "web" {
		t.Fatalf("tags_list=%v", tags)
	}
}

func TestDeleteArticleSuperuserOnly(t *testing.T) {
	r := setupServer(t)

	article := models.Article{Title: "Ephemeral", Content: "c", Author: "a"}
	if err := config.DB.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}

	w := doJSON(t, r, http.MethodDelete, "/api/articles/"+article.Slug, "", nil)
	wantStatus(t, w, http.StatusUnauthorized)

	regular := createUser(t, "reader", true, false)
	w = doJSON(t, r, http.MethodDelete, "/api/articles/"+article.Slug, tokenFor(t, regular), nil)
	wantStatus(t, w, http.StatusForbidden)

	admin := createUser(t, "editor", false, true)
	w = doJSON(t, r, http.MethodDelete, "/api/articles/"+article.Slug, tokenFor(t, admin), nil)
	wantStatus(t, w, http.StatusOK)

	var count int64
	config.DB.Model(&models.Article{}).Where("id = ?", article.ID).Count(&count)
	if count != 0 {
		t.Fatal("article still present after delete")
	}

	w = doJSON(t, r, http.MethodDelete, "/api/articles/"+article.Slug, tokenFor(t, admin), nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestHomeGuestSeesMostVisited(t *testing.T) {
	r := setupServer(t)

	seen := models.Article{Title: "Popular", Content: "c", Author: "a", Views: 7}
	unseen := models.Article{Title: "Fresh", Content: "c", Author: "a"}
	if err := config.DB.Create(&seen).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := config.DB.Create(&unseen).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/home", "", nil)
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	most := body["most_visited"].([]interface{})
	if len(most) != 1 {
		t.Fatalf("guest most_visited has %d entries, want 1 (only viewed articles)", len(most))
	}
	if most[0].(map[string]interface{})["title"] != "Popular" {
		t.Fatalf("unexpected most_visited: %v", most)
	}

	user := createUser(t, "homeuser", false, false)
	w = doJSON(t, r, http.MethodGet, "/api/home", tokenFor(t, user), nil)
	wantStatus(t, w, http.StatusOK)
	body = decodeBody(t, w)
	if len(body["most_visited"].([]interface{})) != 0 {
		t.Fatal("authenticated home must not include most_visited entries")
	}
	if len(body["articles"].([]interface{})) != 2 {
		t.Fatalf("articles=%v", body["articles"])
	}
}

func TestListArticlesPagination(t *testing.T) {
	r := setupServer(t)

	for _, title := range []string{"One", "Two", "Three"} {
		a := models.Article{Title: title, Content: "c", Author: "a"}
		if err := config.DB.Create(&a).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/articles?page=1&limit=2", "", nil)
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if body["total"].(float64) != 3 {
		t.Fatalf("total=%v, want 3", body["total"])
	}
	if len(body["articles"].([]interface{})) != 2 {
		t.Fatalf("page 1 size=%d, want 2", len(body["articles"].([]interface{})))
	}

	w = doJSON(t, r, http.MethodGet, "/api/articles?page=2&limit=2", "", nil)
	wantStatus(t, w, http.StatusOK)
	body = decodeBody(t, w)
	if len(body["articles"].([]interface{})) != 1 {
		t.Fatalf("page 2 size=%d, want 1", len(body["articles"].([]interface{})))
	}
}

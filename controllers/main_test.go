package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
	"github.com/tdngan/news-survey-server/routes"
	"github.com/tdngan/news-survey-server/utils"
)

var dbSeq int64

// setupServer wires a fresh in-memory database behind the full route table.
// The shared-cache DSN keeps every pooled connection on the same database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:ctl%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	config.Logger = zap.NewNop()
	config.App = &config.Config{ExportDir: t.TempDir()}

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

// createUser inserts an account plus profile directly, bypassing the API.
func createUser(t *testing.T, username string, vip, superuser bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsSuperuser:  superuser,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := models.Profile{UserID: user.ID, IsVIP: vip}
	if err := config.DB.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	user.Profile = profile
	return user
}

func tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	role := "user"
	if u.IsSuperuser {
		role = "admin"
	}
	token, err := utils.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// doJSON performs a request against the router; token may be empty for
// anonymous calls and body may be nil for bodiless ones.
func doJSON(t *testing.T, r *gin.Engine, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status=%d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

// seedSurvey creates a survey with one required text question and one
// checkbox question with a known correct pair.
func seedSurvey(t *testing.T) (models.Survey, models.Question, models.Question, []models.QuestionChoice) {
	t.Helper()
	survey := models.Survey{Title: "Reader habits", Active: true, MaxSlots: 10, SlotDurationHours: 24}
	if err := config.DB.Create(&survey).Error; err != nil {
		t.Fatalf("create survey: %v", err)
	}

	text := models.Question{
		SurveyID: survey.ID, Text: "Capital of France?",
		Type: models.QuestionText, Order: 1, Required: true,
		Points: 5, CorrectAnswer: "Paris",
	}
	if err := config.DB.Create(&text).Error; err != nil {
		t.Fatalf("create text question: %v", err)
	}

	checkbox := models.Question{
		SurveyID: survey.ID, Text: "Pick the even numbers",
		Type: models.QuestionCheckbox, Order: 2, Required: false, Points: 4,
	}
	if err := config.DB.Create(&checkbox).Error; err != nil {
		t.Fatalf("create checkbox question: %v", err)
	}
	choices := []models.QuestionChoice{
		{QuestionID: checkbox.ID, Text: "2", Order: 1, IsCorrect: true},
		{QuestionID: checkbox.ID, Text: "3", Order: 2},
		{QuestionID: checkbox.ID, Text: "4", Order: 3, IsCorrect: true},
	}
	for i := range choices {
		if err := config.DB.Create(&choices[i]).Error; err != nil {
			t.Fatalf("create choice: %v", err)
		}
	}
	return survey, text, checkbox, choices
}

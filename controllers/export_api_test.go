package controllers_test

import (
	"encoding/csv"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
)

// waitForJob polls the job row until the background worker settles it.
func waitForJob(t *testing.T, jobID string) models.ExportJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var job models.ExportJob
		if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
			t.Fatalf("load job: %v", err)
		}
		if job.Status == "done" || job.Status == "failed" {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", jobID)
	return models.ExportJob{}
}

func TestExportJobLifecycle(t *testing.T) {
	r := setupServer(t)
	survey, text, _, _ := seedSurvey(t)

	admin := createUser(t, "exporter", false, true)
	vip := createUser(t, "source", true, false)
	token := tokenFor(t, admin)

	w := doJSON(t, r, http.MethodPost, surveyPath(survey.ID, "/responses"), tokenFor(t, vip), map[string]interface{}{
		"answers": []map[string]interface{}{
			{"question_id": text.ID, "answer_text": "Paris"},
		},
	})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/admin/survey-results/export", token, map[string]interface{}{
		"format": "csv",
	})
	wantStatus(t, w, http.StatusAccepted)
	body := decodeBody(t, w)
	jobID, _ := body["job_id"].(string)
	if jobID == "" {
		t.Fatalf("no job_id in %s", w.Body.String())
	}
	if body["status"] != "queued" {
		t.Fatalf("status=%v, want queued", body["status"])
	}

	job := waitForJob(t, jobID)
	if job.Status != "done" {
		t.Fatalf("job status=%s, error=%v", job.Status, job.ErrorMsg)
	}
	if job.FilePath == nil {
		t.Fatal("done job carries no file path")
	}

	f, err := os.Open(*job.FilePath)
	if err != nil {
		t.Fatalf("open export file: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("export has %d rows, want header plus 1", len(records))
	}
	if records[0][0] != "response_id" || records[1][2] != "source" {
		t.Fatalf("unexpected export content: %v", records)
	}

	// once done the endpoint serves the file itself
	w = doJSON(t, r, http.MethodGet, "/api/exports/"+jobID, token, nil)
	wantStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment, got headers %v", w.Header())
	}
	if !strings.Contains(w.Body.String(), "source") {
		t.Fatal("served file misses the response row")
	}
}

func TestExportSingleSurveyFilter(t *testing.T) {
	r := setupServer(t)
	first, firstText, _, _ := seedSurvey(t)
	second, secondText, _, _ := seedSurvey(t)

	admin := createUser(t, "filterer", false, true)
	vip := createUser(t, "twice", true, false)

	for _, sub := range []struct {
		surveyID   uint
		questionID uint
	}{
		{first.ID, firstText.ID},
		{second.ID, secondText.ID},
	} {
		w := doJSON(t, r, http.MethodPost, surveyPath(sub.surveyID, "/responses"), tokenFor(t, vip), map[string]interface{}{
			"answers": []map[string]interface{}{
				{"question_id": sub.questionID, "answer_text": "Paris"},
			},
		})
		wantStatus(t, w, http.StatusOK)
	}

	w := doJSON(t, r, http.MethodPost, "/api/admin/survey-results/export", tokenFor(t, admin), map[string]interface{}{
		"format":    "csv",
		"survey_id": first.ID,
	})
	wantStatus(t, w, http.StatusAccepted)
	jobID := decodeBody(t, w)["job_id"].(string)

	job := waitForJob(t, jobID)
	if job.Status != "done" {
		t.Fatalf("job status=%s, error=%v", job.Status, job.ErrorMsg)
	}

	f, err := os.Open(*job.FilePath)
	if err != nil {
		t.Fatalf("open export file: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("filtered export has %d rows, want header plus 1", len(records))
	}
}

func TestExportValidation(t *testing.T) {
	r := setupServer(t)
	admin := createUser(t, "validator", false, true)
	token := tokenFor(t, admin)

	w := doJSON(t, r, http.MethodPost, "/api/admin/survey-results/export", token, map[string]interface{}{
		"format": "pdf",
	})
	wantStatus(t, w, http.StatusUnprocessableEntity)

	w = doJSON(t, r, http.MethodPost, "/api/admin/survey-results/export", token, map[string]interface{}{
		"format":    "csv",
		"survey_id": 9999,
	})
	wantStatus(t, w, http.StatusNotFound)

	w = doJSON(t, r, http.MethodGet, "/api/exports/not-a-job", token, nil)
	wantStatus(t, w, http.StatusNotFound)
}

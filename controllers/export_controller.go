package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tdngan/news-survey-server/config"
	"github.com/tdngan/news-survey-server/models"
)

type exportReq struct {
	Format   string `json:"format"`
	SurveyID *uint  `json:"survey_id"`
}

// CreateExport queues an asynchronous survey-results export. The worker runs
// in a goroutine and the client polls GET /api/exports/:job_id.
func CreateExport(c *gin.Context) {
	var req exportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	if req.Format != "csv" && req.Format != "xlsx" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Format must be csv or xlsx"})
		return
	}

	if req.SurveyID != nil {
		var survey models.Survey
		if err := config.DB.First(&survey, *req.SurveyID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Survey not found"})
			return
		}
	}

	job := models.ExportJob{
		JobID:    uuid.New().String(),
		SurveyID: req.SurveyID,
		Format:   req.Format,
		Status:   "queued",
	}
	if err := config.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not queue export"})
		return
	}

	go processExportJob(job.JobID)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
	})
}

// GetExport reports job status, or serves the file once the job is done.
func GetExport(c *gin.Context) {
	jobID := c.Param("job_id")

	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Export job not found"})
		return
	}

	if job.Status == "done" && job.FilePath != nil {
		c.FileAttachment(*job.FilePath, path.Base(*job.FilePath))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
		"error":  job.ErrorMsg,
	})
}

type exportRow struct {
	ResponseID  uint
	SurveyTitle string
	Username    string
	SubmittedAt time.Time
	Score       int
	MaxScore    int
	SlotNumber  int
}

func processExportJob(jobID string) {
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		return
	}
	config.DB.Model(&job).Update("status", "processing")

	outDir := "./exports"
	if config.App != nil && config.App.ExportDir != "" {
		outDir = config.App.ExportDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		failExportJob(&job, err)
		return
	}

	rows, err := collectExportRows(&job)
	if err != nil {
		failExportJob(&job, err)
		return
	}

	outPath := path.Join(outDir, fmt.Sprintf("survey_results_%s.%s", job.JobID, job.Format))
	if job.Format == "xlsx" {
		err = writeXLSX(outPath, rows)
	} else {
		err = writeCSV(outPath, rows)
	}
	if err != nil {
		failExportJob(&job, err)
		return
	}

	config.DB.Model(&job).Updates(map[string]interface{}{
		"status":    "done",
		"file_path": outPath,
	})
}

func failExportJob(job *models.ExportJob, err error) {
	config.Logger.Error("export job failed", zap.String("job_id", job.JobID), zap.Error(err))
	msg := err.Error()
	config.DB.Model(job).Updates(map[string]interface{}{
		"status":    "failed",
		"error_msg": msg,
	})
}

func collectExportRows(job *models.ExportJob) ([]exportRow, error) {
	q := config.DB.Preload("User").Preload("Survey").Order("submitted_at ASC")
	if job.SurveyID != nil {
		q = q.Where("survey_id = ?", *job.SurveyID)
	}

	var responses []models.Response
	if err := q.Find(&responses).Error; err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, exportRow{
			ResponseID:  r.ID,
			SurveyTitle: r.Survey.Title,
			Username:    r.User.Username,
			SubmittedAt: r.SubmittedAt,
			Score:       r.Score,
			MaxScore:    r.MaxPossibleScore,
			SlotNumber:  r.SlotNumber,
		})
	}
	return rows, nil
}

var exportHeader = []string{"response_id", "survey", "username", "submitted_at", "score", "max_possible_score", "slot_number"}

func writeCSV(outPath string, rows []exportRow) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			fmt.Sprintf("%d", r.ResponseID),
			r.SurveyTitle,
			r.Username,
			r.SubmittedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.MaxScore),
			fmt.Sprintf("%d", r.SlotNumber),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(outPath string, rows []exportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, r := range rows {
		values := []interface{}{
			r.ResponseID, r.SurveyTitle, r.Username,
			r.SubmittedAt.Format(time.RFC3339), r.Score, r.MaxScore, r.SlotNumber,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(outPath)
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"elibro/repository"
	"elibro/utils"
)

type ReportHandler struct {
	Repo     *repository.ReportRepository
	SavePath string
	R2       *utils.R2Uploader // nil when object storage is not configured
	Logger   *zap.Logger
}

// TopBooks reports the ten most downloaded books and each one's share of
// the combined downloads.
func (h *ReportHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.TopBooks(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report data retrieved successfully", rows)
}

func (h *ReportHandler) LanguagesDistribution(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.LanguagesDistribution(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report data retrieved successfully", rows)
}

func (h *ReportHandler) MonthlySignups(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.MonthlySignups(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Report data retrieved successfully", rows)
}

// ExportTopBooks renders the top-books report to PDF, saves it locally and
// uploads it to object storage when configured.
func (h *ReportHandler) ExportTopBooks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Repo.TopBooks(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	pdfBytes, err := utils.GenerateTopBooksPDF(rows)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	saveDir := h.SavePath
	if saveDir == "" {
		saveDir = "./pdfs"
	}
	if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	filename := fmt.Sprintf("top_books_%d.pdf", time.Now().Unix())
	savePath := filepath.Join(saveDir, filename)
	if err := os.WriteFile(savePath, pdfBytes, 0644); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	result := map[string]string{"file": savePath}
	if h.R2 != nil {
		url, err := h.R2.Upload(r.Context(), pdfBytes, filename)
		if err != nil {
			// The report is already on disk; the missing upload is logged,
			// not fatal.
			h.Logger.Warn("report upload failed", zap.Error(err))
		} else {
			result["url"] = url
		}
	}

	writeSuccess(w, http.StatusCreated, "Report exported successfully", result)
}

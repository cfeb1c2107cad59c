package utils

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"elibro/models"
)

type topBooksPDFData struct {
	Generated string
	Rows      []models.TopBook
}

// GenerateTopBooksPDF renders the top-books report to an A4 PDF with
// headless Chrome.
func GenerateTopBooksPDF(rows []models.TopBook) ([]byte, error) {
	tmpl, err := template.ParseFiles("templates/top_books_report.html")
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	data := topBooksPDFData{
		Generated: time.Now().Format("02-Jan-2006 15:04"),
		Rows:      rows,
	}
	if err := tmpl.Execute(&html, data); err != nil {
		return nil, err
	}

	// Chrome needs a file URL; render through a temp file.
	tmpDir := os.TempDir()
	tmpHTML := filepath.Join(tmpDir, "top_books_"+time.Now().Format("20060102150405")+".html")
	if err := os.WriteFile(tmpHTML, html.Bytes(), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tmpHTML)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuf []byte
	fileURL := "file://" + tmpHTML

	err = chromedp.Run(ctx,
		chromedp.Navigate(fileURL),
		chromedp.Sleep(1*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

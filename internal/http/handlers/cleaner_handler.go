package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"tripcleaner/internal/cleaner"
	intconfig "tripcleaner/internal/config"
	"tripcleaner/internal/domain"
	"tripcleaner/internal/http/middleware"
	"tripcleaner/internal/repositories"
	"tripcleaner/internal/services"
	"tripcleaner/internal/utils"

	"github.com/gin-gonic/gin"
)

var registry = cleaner.NewRegistry()

// CleanData handles POST /api/clean-data: a multipart batch of source files
// plus a cleanerType field naming the format family. Files are processed in
// upload order and the styled review workbook is persisted for download.
func CleanData(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	sourceType := utils.TrimOrEmpty(c.PostForm("cleanerType"))
	if sourceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cleanerType field is required"})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	files := make([]cleaner.File, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload " + fh.Filename + ": " + err.Error()})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload " + fh.Filename + ": " + err.Error()})
			return
		}
		files = append(files, cleaner.File{Name: fh.Filename, Data: data})
	}

	if err := intconfig.EnsureDB(getEnv()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database not reachable: " + err.Error()})
		return
	}

	svc := services.CleanerService{
		Trips:     repositories.TripRepository{},
		Tolls:     repositories.TollRepository{},
		Addresses: repositories.AddressRepository{},
		Registry:  registry,
		RequestID: middleware.GetRequestID(c),
	}

	res, err := svc.Clean(sourceType, files)
	warning := ""
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAddressSync):
		// Records are stored; only the address cache write failed.
		warning = err.Error()
	case errors.Is(err, domain.ErrUnknownSourceType),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrMissingJoinKeys):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleaning failed: " + err.Error()})
		return
	}

	outDir := getEnv().OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot create output dir: " + err.Error()})
		return
	}
	if err := os.WriteFile(filepath.Join(outDir, res.Filename), res.Report, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot persist report: " + err.Error()})
		return
	}

	out := gin.H{
		"message":             "data cleaned successfully",
		"report_file":         res.Filename,
		"rows_processed":      res.RowsProcessed,
		"db_rows_added":       res.RowsSaved,
		"new_addresses_added": res.NewAddresses,
	}
	if len(res.SkippedFiles) > 0 {
		out["skipped_files"] = res.SkippedFiles
	}
	if warning != "" {
		out["warning"] = warning
	}
	c.JSON(http.StatusOK, out)
}

// DownloadReport handles GET /api/clean-data/files/:name and serves a
// previously generated workbook.
func DownloadReport(c *gin.Context) {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return
	}

	path := filepath.Join(getEnv().OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found: " + name})
		return
	}
	c.FileAttachment(path, name)
}

// ZoneKmLookup handles POST /api/addresses/zone-km: resolves locality, zone
// and km for addresses that already have a locality assigned.
func ZoneKmLookup(c *gin.Context) {
	var req struct {
		Addresses []string `json:"addresses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if len(req.Addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addresses list is required"})
		return
	}

	repo := repositories.AddressRepository{}
	rows, err := repo.ZoneKmForAddresses(req.Addresses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed: " + err.Error()})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"address":  r.Address,
			"locality": r.Locality,
			"zone":     r.Zone,
			"km":       r.Km,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

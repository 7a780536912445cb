package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	maxUploadSize = int64(50 << 20) // high-resolution phone photos
	maxJSONSize   = int64(10 << 20)
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON {"error": message} body
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// notFoundOr picks 404 for missing records and fallback for anything else
func notFoundOr(err error, fallback int) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return fallback
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONSize))
	return dec.Decode(v)
}

// contentTypeFor determines the content type of an upload
func contentTypeFor(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".txt":
		return textContentType
	default:
		return "application/octet-stream"
	}
}

// handleExtract runs extraction over posted text without storing it
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var input TextInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, s.service.ExtractText(input))
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// handleUploadReceipt handles receipt upload
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)

	receipt, err := s.service.ProcessReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleCreateTextReceipt stores a receipt that is already text
func (s *Server) handleCreateTextReceipt(w http.ResponseWriter, r *http.Request) {
	var input TextInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := s.service.CreateFromText(input)
	if err != nil {
		slog.Error("Error creating text receipt", "filename", input.Filename, "error", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		writeError(w, "Receipt not found", notFoundOr(err, http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the file for a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		writeError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		slog.Error("Error deleting receipt", "error", err)
		status := notFoundOr(err, http.StatusInternalServerError)
		if errors.Is(err, ErrInBatch) {
			status = http.StatusConflict
		}
		writeError(w, "Error deleting receipt", status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListBatches returns a list of all batches
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.service.ListBatches()
	if err != nil {
		slog.Error("Error listing batches", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, batches)
}

type batchResponse struct {
	Batch    *Batch     `json:"batch"`
	Receipts []*Receipt `json:"receipts"`
}

// handleCreateBatch extracts and stores many text receipts at once
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []TextInput `json:"items"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	batch, receipts, err := s.service.CreateBatch(r.Context(), req.Items)
	if err != nil {
		slog.Error("Error creating batch", "error", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, batchResponse{Batch: batch, Receipts: receipts})
}

// handleGetBatch returns a batch with its receipts
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, receipts, err := s.service.GetBatch(r.PathValue("id"))
	if err != nil {
		writeError(w, "Batch not found", notFoundOr(err, http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Batch: batch, Receipts: receipts})
}

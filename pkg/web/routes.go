// Package web exposes the reconciliation pipeline over HTTP: statement and
// receipt uploads, remittance parsing, receipt matching and the Xero flows.
package web

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/bankreco/bankreco/pkg/match"
	"github.com/bankreco/bankreco/pkg/metrics"
	"github.com/bankreco/bankreco/pkg/model"
	"github.com/bankreco/bankreco/pkg/ocr"
	"github.com/bankreco/bankreco/pkg/parser"
	"github.com/bankreco/bankreco/pkg/remittance"
	"github.com/bankreco/bankreco/pkg/store"
	"github.com/bankreco/bankreco/pkg/xero"
)

const maxUploadMemory = 32 << 20

// ServerParams wires the server's collaborators.
type ServerParams struct {
	Store  store.ReceiptStore
	Engine ocr.Engine
	Tokens *xero.TokenStore
	Fs     afero.Fs
	Logger *zap.Logger
}

// Server handles the HTTP routes.
type Server struct {
	store  store.ReceiptStore
	engine ocr.Engine
	tokens *xero.TokenStore
	xc     *xero.Client
	fs     afero.Fs
	log    *zap.Logger
	now    func() time.Time
}

// NewServer builds a server. The OCR engine defaults to the registered one
// and the file system to the OS file system.
func NewServer(params ServerParams) *Server {
	s := &Server{
		store:  params.Store,
		engine: params.Engine,
		tokens: params.Tokens,
		fs:     params.Fs,
		log:    params.Logger,
		now:    time.Now,
	}
	if s.engine == nil {
		s.engine = ocr.DefaultEngine()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.tokens != nil {
		s.xc = xero.NewClient(s.tokens)
	}
	return s
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, code int, format string, args ...interface{}) {
	respondJSON(w, code, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// HandleHome is the liveness endpoint.
func (s *Server) HandleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Bank Reconciliation Agent is live."})
	}
}

// HandleUploadBankStatement parses one or more statement uploads and writes
// a statement import CSV per parsed file.
func (s *Server) HandleUploadBankStatement() http.HandlerFunc {
	type fileResult struct {
		Filename    string `json:"filename"`
		RecordCount int    `json:"record_count"`
		DownloadURL string `json:"download_url,omitempty"`
		Note        string `json:"note,omitempty"`
		Status      string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
			return
		}
		uploads := r.MultipartForm.File["files"]
		if len(uploads) == 0 {
			respondError(w, http.StatusBadRequest, "no files uploaded")
			return
		}

		results := make([]fileResult, 0, len(uploads))
		for _, fh := range uploads {
			data, err := readUpload(fh)
			if err != nil {
				respondError(w, http.StatusBadRequest, "failed to read %s: %v", fh.Filename, err)
				return
			}
			st, err := parser.Parse(fh.Filename, data)
			if err != nil {
				respondError(w, http.StatusBadRequest, "failed to process %s: %v", fh.Filename, err)
				return
			}
			metrics.StatementsParsed.WithLabelValues(string(st.Bank)).Inc()

			res := fileResult{Filename: fh.Filename, RecordCount: len(st.Transactions), Status: "parsed", Note: st.Note}
			if len(st.Transactions) > 0 {
				exportName := st.Bank.ExportName(s.now())
				out, err := xero.ToStatementCSV(st.Transactions)
				if err != nil {
					respondError(w, http.StatusBadRequest, "failed to export %s: %v", fh.Filename, err)
					return
				}
				if err := s.writeExport(exportName, out); err != nil {
					respondError(w, http.StatusInternalServerError, "failed to write export for %s: %v", fh.Filename, err)
					return
				}
				res.DownloadURL = "/download/" + exportName
			}
			results = append(results, res)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "results": results})
	}
}

// HandleUploadPaymentReceipt saves the image, runs OCR and stores the
// extracted receipt.
func (s *Server) HandleUploadPaymentReceipt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
			return
		}
		file, fh, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing file: %v", err)
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read %s: %v", fh.Filename, err)
			return
		}

		name := filepath.Base(fh.Filename)
		imagePath := model.GetArchivePathPrefixToReceipts() + name
		if err := s.fs.MkdirAll(filepath.Dir(imagePath), 0755); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to save %s: %v", name, err)
			return
		}
		if err := afero.WriteFile(s.fs, imagePath, data, 0644); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to save %s: %v", name, err)
			return
		}

		if s.engine == nil {
			respondError(w, http.StatusServiceUnavailable, "no OCR engine configured")
			return
		}
		rec, err := s.engine.Recognize(r.Context(), ocr.Input{Image: data})
		if err != nil {
			metrics.OCRFailures.Inc()
			respondError(w, http.StatusBadRequest, "text recognition failed for %s: %v", name, err)
			return
		}

		fields := ocr.ExtractFields(rec.PlainText)
		receipt := model.Receipt{
			ID:         uuid.NewString(),
			Filename:   name,
			Amount:     fields.Amount,
			Date:       fields.Date,
			Reference:  fields.Reference,
			RawText:    rec.PlainText,
			Source:     s.engine.Name(),
			UploadedAt: s.now().UTC(),
		}
		if err := s.store.Add(receipt); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to store receipt: %v", err)
			return
		}
		metrics.ReceiptsIngested.Inc()

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"filename":  name,
			"extracted": receipt,
		})
	}
}

// HandleUploadRemittance parses a single remittance workbook.
func (s *Server) HandleUploadRemittance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
			return
		}
		file, fh, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing file: %v", err)
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read %s: %v", fh.Filename, err)
			return
		}
		parsed, err := remittance.Parse(data)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to parse remittance file: %v", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":                "success",
			"filename":              fh.Filename,
			"invoices_found":        len(parsed.Invoices),
			"manual_payments_found": len(parsed.ManualPayments),
			"data":                  parsed,
		})
	}
}

// HandleUploadRemittanceMulti parses several workbooks, keeping per-file
// errors in the response instead of failing the batch.
func (s *Server) HandleUploadRemittanceMulti() http.HandlerFunc {
	type fileResult struct {
		Filename            string            `json:"filename"`
		InvoicesFound       int               `json:"invoices_found,omitempty"`
		ManualPaymentsFound int               `json:"manual_payments_found,omitempty"`
		Data                *model.Remittance `json:"data,omitempty"`
		Error               string            `json:"error,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
			return
		}
		uploads := r.MultipartForm.File["files"]
		results := make([]fileResult, 0, len(uploads))
		for _, fh := range uploads {
			data, err := readUpload(fh)
			if err != nil {
				results = append(results, fileResult{Filename: fh.Filename, Error: err.Error()})
				continue
			}
			parsed, err := remittance.Parse(data)
			if err != nil {
				results = append(results, fileResult{Filename: fh.Filename, Error: err.Error()})
				continue
			}
			results = append(results, fileResult{
				Filename:            fh.Filename,
				InvoicesFound:       len(parsed.Invoices),
				ManualPaymentsFound: len(parsed.ManualPayments),
				Data:                parsed,
			})
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "files": results})
	}
}

// HandleMatchReceipts matches stored receipts against an uploaded bank CSV
// and writes an enriched CSV export.
func (s *Server) HandleMatchReceipts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
			return
		}
		file, fh, err := r.FormFile("bank_csv")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing bank_csv: %v", err)
			return
		}
		defer func() { _ = file.Close() }()

		opts := match.Options{
			DateWindowDays:  match.DefaultDateWindowDays,
			AmountTolerance: match.DefaultAmountTolerance,
		}
		if v := r.URL.Query().Get("date_window_days"); v != "" {
			days, err := strconv.Atoi(v)
			if err != nil || days < 0 || days > 14 {
				respondError(w, http.StatusBadRequest, "date_window_days must be an integer in [0, 14]")
				return
			}
			opts.DateWindowDays = days
		}
		if v := r.URL.Query().Get("amount_tol"); v != "" {
			tol, err := strconv.ParseFloat(v, 64)
			if err != nil || tol < 0 || tol > 5 {
				respondError(w, http.StatusBadRequest, "amount_tol must be a number in [0, 5]")
				return
			}
			opts.AmountTolerance = tol
		}

		cr := csv.NewReader(file)
		cr.FieldsPerRecord = -1
		table, err := cr.ReadAll()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read bank csv: %v", err)
			return
		}

		receipts, err := s.store.List()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list receipts: %v", err)
			return
		}

		res, err := match.Match(table, receipts, opts)
		if err != nil {
			respondError(w, http.StatusBadRequest, "%v", err)
			return
		}
		for _, row := range res.Rows {
			metrics.MatchOutcomes.WithLabelValues(string(row.Status)).Inc()
		}

		base := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
		exportName := base + "_with_receipts.csv"
		enriched, err := enrichCSV(table, res.Rows)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to build export: %v", err)
			return
		}
		if err := s.writeExport(exportName, enriched); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to write export: %v", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"summary":     res.Summary,
			"export_file": exportName,
			"rows":        len(res.Rows),
		})
	}
}

// enrichCSV appends the match annotation columns to the original table.
func enrichCSV(table [][]string, rows []model.MatchResult) ([]byte, error) {
	extra := []string{"Matched Receipt ID", "Matched Receipt Ref", "Matched Receipt Date", "Matched Receipt File", "Receipt Candidates", "Review Status"}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append(append([]string{}, table[0]...), extra...)); err != nil {
		return nil, err
	}
	for i, row := range table[1:] {
		annotated := append([]string{}, row...)
		if i < len(rows) {
			mr := rows[i]
			annotated = append(annotated,
				mr.MatchedReceiptID,
				mr.MatchedReceiptRef,
				mr.MatchedReceiptDate,
				mr.MatchedReceiptFile,
				strings.Join(mr.Candidates, "; "),
				string(mr.Status),
			)
		}
		if err := w.Write(annotated); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HandleListReceipts lists stored receipts.
func (s *Server) HandleListReceipts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receipts, err := s.store.List()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to list receipts: %v", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"count": len(receipts), "receipts": receipts})
	}
}

// HandleClearReceipts drops every stored receipt.
func (s *Server) HandleClearReceipts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := s.store.Clear()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to clear receipts: %v", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
	}
}

// HandleAuthorize redirects the browser into the OAuth consent flow.
func (s *Server) HandleAuthorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			respondError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		http.Redirect(w, r, s.tokens.AuthorizeURL(uuid.NewString()), http.StatusTemporaryRedirect)
	}
}

// HandleCallback finishes the OAuth flow.
func (s *Server) HandleCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			respondError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			respondError(w, http.StatusBadRequest, "missing code parameter")
			return
		}
		tokens, err := s.tokens.Exchange(r.Context(), code)
		if err != nil {
			respondError(w, http.StatusBadGateway, "token exchange failed: %v", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"access_token":       tokens.AccessToken,
			"refresh_token":      tokens.RefreshToken,
			"expires_in_minutes": tokens.ExpiresIn / 60,
		})
	}
}

// HandleInvoices lists the unpaid purchase bills.
func (s *Server) HandleInvoices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.xc == nil {
			respondError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		bills, err := s.xc.UnpaidBills(r.Context())
		if err != nil {
			respondError(w, http.StatusBadGateway, "%v", err)
			return
		}
		respondJSON(w, http.StatusOK, bills)
	}
}

// HandlePostPayments validates reconciliation lines and posts them,
// appending the outcome to the audit log. dry_run=true previews without
// posting.
func (s *Server) HandlePostPayments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.xc == nil {
			respondError(w, http.StatusServiceUnavailable, "xero is not configured")
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read body: %v", err)
			return
		}
		var req xero.PostRequest
		if err := jsoniter.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		accounts, err := s.xc.Accounts(r.Context())
		if err != nil {
			respondError(w, http.StatusBadGateway, "%v", err)
			return
		}
		account, err := xero.PickBankAccount(accounts, r.URL.Query().Get("account_hint"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "%v", err)
			return
		}

		validated, err := xero.ValidateAndBuild(req, account.AccountID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "%v", err)
			return
		}

		if r.URL.Query().Get("dry_run") == "true" {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"bank_account": account,
				"preview":      validated.Preview,
			})
			return
		}

		results, err := s.xc.Post(r.Context(), validated, xero.MakeIdemKey(string(body)))
		if err != nil {
			metrics.XeroPosts.WithLabelValues("error").Inc()
			respondError(w, http.StatusBadGateway, "%v", err)
			return
		}
		metrics.XeroPosts.WithLabelValues("success").Inc()

		audit := make([]interface{}, 0, len(validated.Preview))
		for _, item := range validated.Preview {
			audit = append(audit, item)
		}
		if err := xero.AppendAuditLog(s.fs, audit); err != nil {
			s.log.Error("audit log append failed", zap.Error(err))
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"bank_account": account,
			"results":      results,
		})
	}
}

// HandleDownload serves a previously written export.
func (s *Server) HandleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(chi.URLParam(r, "file"))
		data, err := afero.ReadFile(s.fs, model.GetPathToExport(name))
		if err != nil {
			respondError(w, http.StatusNotFound, "no export named %s", name)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(data)
	}
}

func (s *Server) writeExport(name string, data []byte) error {
	path := model.GetPathToExport(name)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, path, data, 0644)
}

// InitRouter mounts every route on a chi router.
func InitRouter(srv *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", srv.HandleHome())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/upload/bank-statement", srv.HandleUploadBankStatement())
	r.Post("/upload/payment-receipt", srv.HandleUploadPaymentReceipt())
	r.Post("/upload/remittance", srv.HandleUploadRemittance())
	r.Post("/upload/remittance-multi", srv.HandleUploadRemittanceMulti())

	r.Post("/recon/match-receipts", srv.HandleMatchReceipts())

	r.Get("/receipts", srv.HandleListReceipts())
	r.Delete("/receipts", srv.HandleClearReceipts())

	r.Get("/authorize", srv.HandleAuthorize())
	r.Get("/callback", srv.HandleCallback())
	r.Get("/invoices", srv.HandleInvoices())
	r.Post("/xero/post-payments", srv.HandlePostPayments())

	r.Get("/download/{file}", srv.HandleDownload())

	return r
}

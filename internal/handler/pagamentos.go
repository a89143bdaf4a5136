package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/infra"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// PagamentosHandler exposes the payments ledger: CRUD, bulk status updates,
// filtered listings with statistics, report exports, CSV import and local or
// Drive backups.
type PagamentosHandler struct {
	svc            service.PagamentoService
	drive          *infra.DriveClient
	cb             *infra.CircuitBreaker
	token          *store.Value[oauth2.Token]
	backupFilename string
}

func NewPagamentosHandler(svc service.PagamentoService, drive *infra.DriveClient, cb *infra.CircuitBreaker, kv store.KV, backupFilename string) *PagamentosHandler {
	return &PagamentosHandler{
		svc:            svc,
		drive:          drive,
		cb:             cb,
		token:          store.NewValue[oauth2.Token](kv, store.KeyDriveToken),
		backupFilename: backupFilename,
	}
}

func (h *PagamentosHandler) Listar(c *gin.Context) {
	var filter query.PagamentoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagamentosHandler) Criar(c *gin.Context) {
	var req dto.CriarPagamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pagamento, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pagamento)
}

func (h *PagamentosHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarPagamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pagamento, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagamento)
}

func (h *PagamentosHandler) Excluir(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AtualizarStatus applies one status to a batch of ids. Partial success is
// normal: ids that vanished are counted out, the rest are updated.
func (h *PagamentosHandler) AtualizarStatus(c *gin.Context) {
	var req dto.BulkStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	atualizados, err := h.svc.AtualizarStatusEmLote(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkStatusResponse{Atualizados: atualizados, Solicitados: len(req.IDs)})
}

func (h *PagamentosHandler) LimparTudo(c *gin.Context) {
	if err := h.svc.LimparTudo(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PagamentosHandler) filtered(c *gin.Context) (*dto.PagamentoListResponse, bool) {
	var filter query.PagamentoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return nil, false
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return resp, true
}

// ExportCSV streams the filtered records. modelo=backup selects the raw
// interchange variant; the default is the spreadsheet-facing one.
func (h *PagamentosHandler) ExportCSV(c *gin.Context) {
	resp, ok := h.filtered(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	if c.Query("modelo") == "backup" {
		err = export.WriteBackupPagamentosCSV(&buf, resp.Data)
	} else {
		err = export.WritePagamentosCSV(&buf, resp.Data)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pagamentos.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *PagamentosHandler) ExportXLSX(c *gin.Context) {
	resp, ok := h.filtered(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePagamentosXLSX(&buf, resp.Data); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pagamentos.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *PagamentosHandler) ExportPDF(c *gin.Context) {
	resp, ok := h.filtered(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteRelatorioPDF(&buf, "Relatório de Pagamentos", resp.Data); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="relatorio_pagamentos.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// RelatorioAnual returns the nome × mês pivot for one year, as JSON by
// default or as a rendered file with formato=pdf|xlsx.
func (h *PagamentosHandler) RelatorioAnual(c *gin.Context) {
	ano := c.Param("ano")
	records, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	summary := query.BuildAnnualSummary(records, ano)

	switch c.Query("formato") {
	case "pdf":
		var buf bytes.Buffer
		if err := export.WriteAnnualPDF(&buf, summary, ano); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="relatorio_anual_`+ano+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteAnnualXLSX(&buf, summary); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="relatorio_anual_`+ano+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		c.JSON(http.StatusOK, summary)
	}
}

// ImportCSV accepts either a multipart "file" field or the CSV as the raw
// request body.
func (h *PagamentosHandler) ImportCSV(c *gin.Context) {
	var reader io.Reader
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Arquivo inválido"))
			return
		}
		defer f.Close()
		reader = f
	} else {
		reader = c.Request.Body
	}

	result, err := h.svc.ImportarCSV(c.Request.Context(), reader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PagamentosHandler) Backup(c *gin.Context) {
	backup, err := h.svc.ExportarBackup(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.backupFilename+`"`)
	c.JSON(http.StatusOK, backup)
}

func (h *PagamentosHandler) RestaurarBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Arquivo inválido"))
		return
	}
	result, err := h.svc.ImportarBackup(c.Request.Context(), raw, c.Query("mesclar") == "true")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ── Google Drive ──────────────────────────────────────────────────────────────

func (h *PagamentosHandler) DriveAuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.drive.AuthURL("pagamentos")})
}

func (h *PagamentosHandler) DriveCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Código de autorização ausente"))
		return
	}
	token, err := h.drive.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
		return
	}
	if err := h.token.Save(c.Request.Context(), *token); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func (h *PagamentosHandler) loadDriveToken(c *gin.Context) (*oauth2.Token, bool) {
	token, ok, err := h.token.Load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.New("Google Drive não conectado"))
		return nil, false
	}
	return &token, true
}

// DriveBackup uploads the current backup, replacing the previous file of the
// same name. Calls go through the circuit breaker so a flapping Drive does
// not get hammered.
func (h *PagamentosHandler) DriveBackup(c *gin.Context) {
	token, ok := h.loadDriveToken(c)
	if !ok {
		return
	}
	backup, err := h.svc.ExportarBackup(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	content, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var fileID string
	err = h.cb.Execute(func() error {
		var uploadErr error
		fileID, uploadErr = h.drive.Upload(c.Request.Context(), token, h.backupFilename, content)
		return uploadErr
	})
	if err != nil {
		h.respondDriveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileId": fileID, "filename": h.backupFilename})
}

// DriveRestore downloads the remote backup and imports it.
func (h *PagamentosHandler) DriveRestore(c *gin.Context) {
	token, ok := h.loadDriveToken(c)
	if !ok {
		return
	}

	var raw []byte
	err := h.cb.Execute(func() error {
		var dlErr error
		raw, dlErr = h.drive.Download(c.Request.Context(), token, h.backupFilename)
		return dlErr
	})
	if err != nil {
		h.respondDriveError(c, err)
		return
	}

	result, err := h.svc.ImportarBackup(c.Request.Context(), raw, c.Query("mesclar") == "true")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PagamentosHandler) respondDriveError(c *gin.Context, err error) {
	switch err {
	case infra.ErrReauthRequired:
		c.JSON(http.StatusUnauthorized, apierror.New("Sessão do Google Drive expirada. Conecte novamente."))
	case infra.ErrCircuitOpen:
		c.JSON(http.StatusServiceUnavailable, apierror.New("Google Drive temporariamente indisponível. Tente mais tarde."))
	default:
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
	}
}

package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
)

// EstoqueHandler exposes the pharmacy stock: products, categories, stock
// entries and exits, the movement log with its reports, expiry alerts and
// the backup history.
type EstoqueHandler struct {
	svc     service.EstoqueService
	backups service.BackupService
}

func NewEstoqueHandler(svc service.EstoqueService, backups service.BackupService) *EstoqueHandler {
	return &EstoqueHandler{svc: svc, backups: backups}
}

// ── Produtos ──────────────────────────────────────────────────────────────────

func (h *EstoqueHandler) ListarProdutos(c *gin.Context) {
	produtos, err := h.svc.ListarProdutos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, produtos)
}

func (h *EstoqueHandler) CriarProduto(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	produto, err := h.svc.CriarProduto(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, produto)
}

func (h *EstoqueHandler) AtualizarProduto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	produto, err := h.svc.AtualizarProduto(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, produto)
}

func (h *EstoqueHandler) ExcluirProduto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.ExcluirProduto(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EstoqueHandler) ExportProdutosCSV(c *gin.Context) {
	produtos, err := h.svc.ListarProdutos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteProdutosCSV(&buf, produtos); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="estoque.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ── Categorias ────────────────────────────────────────────────────────────────

func (h *EstoqueHandler) ListarCategorias(c *gin.Context) {
	categorias, err := h.svc.ListarCategorias(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categorias)
}

func (h *EstoqueHandler) CriarCategoria(c *gin.Context) {
	var req dto.CriarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	categoria, err := h.svc.CriarCategoria(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoria)
}

func (h *EstoqueHandler) AtualizarCategoria(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	categoria, err := h.svc.AtualizarCategoria(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoria)
}

func (h *EstoqueHandler) ExcluirCategoria(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.ExcluirCategoria(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Movimentações ─────────────────────────────────────────────────────────────

func (h *EstoqueHandler) RegistrarEntrada(c *gin.Context) {
	var req dto.EntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.svc.RegistrarEntrada(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

func (h *EstoqueHandler) RegistrarSaida(c *gin.Context) {
	var req dto.SaidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	mov, err := h.svc.RegistrarSaida(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

func (h *EstoqueHandler) movimentacoesFiltradas(c *gin.Context) ([]model.Movimentacao, bool) {
	var filter query.MovimentacaoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return nil, false
	}
	movs, err := h.svc.ListarMovimentacoes(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return movs, true
}

func (h *EstoqueHandler) ListarMovimentacoes(c *gin.Context) {
	movs, ok := h.movimentacoesFiltradas(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, movs)
}

// ExportMovimentacoes streams the filtered movement log as csv, xlsx or pdf.
func (h *EstoqueHandler) ExportMovimentacoes(c *gin.Context) {
	movs, ok := h.movimentacoesFiltradas(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	switch c.Query("formato") {
	case "xlsx":
		if err := export.WriteMovimentacoesXLSX(&buf, movs); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="movimentacoes.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	case "pdf":
		if err := export.WriteMovimentacoesPDF(&buf, "Relatório de Movimentações", movs); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="movimentacoes.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	default:
		if err := export.WriteMovimentacoesCSV(&buf, movs); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="movimentacoes.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

// ── Painéis ───────────────────────────────────────────────────────────────────

func (h *EstoqueHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *EstoqueHandler) Alertas(c *gin.Context) {
	alertas, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, alertas)
}

// Validades lists lots expiring within ?dias (default 30).
func (h *EstoqueHandler) Validades(c *gin.Context) {
	dias := 30
	if raw := c.Query("dias"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, apierror.New("Parâmetro dias inválido"))
			return
		}
		dias = v
	}
	lotes, err := h.svc.LotesVencendo(c.Request.Context(), dias)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lotes)
}

// Resumos aggregates the movement log per category and per period.
func (h *EstoqueHandler) Resumos(c *gin.Context) {
	produtos, err := h.svc.ListarProdutos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	movs, err := h.svc.ListarMovimentacoes(c.Request.Context(), query.MovimentacaoFilter{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"porCategoria": query.ResumoPorCategoria(produtos, movs),
		"periodo":      query.ResumoPeriodo(movs),
	})
}

// ── Backups ───────────────────────────────────────────────────────────────────

// Backup exports the three collections and records the snapshot in the
// local history.
func (h *EstoqueHandler) Backup(c *gin.Context) {
	backup, err := h.svc.ExportarBackup(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.backups.SalvarLocal(c.Request.Context(), backup); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+backup.Nome+`.json"`)
	c.JSON(http.StatusOK, backup)
}

func (h *EstoqueHandler) RestaurarBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Arquivo inválido"))
		return
	}
	substituir := c.Query("substituir") == "true"
	if err := h.svc.ImportarBackup(c.Request.Context(), raw, substituir); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EstoqueHandler) ListarBackups(c *gin.Context) {
	historico, err := h.backups.ListarLocais(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, historico)
}

func (h *EstoqueHandler) BackupConfig(c *gin.Context) {
	cfg, err := h.backups.Config(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *EstoqueHandler) AtualizarBackupConfig(c *gin.Context) {
	var cfg model.BackupConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return
	}
	if err := h.backups.AtualizarConfig(c.Request.Context(), cfg); err != nil {
		respondServiceError(c, err)
		return
	}
	atual, err := h.backups.Config(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, atual)
}

func (h *EstoqueHandler) LimparTudo(c *gin.Context) {
	if err := h.svc.LimparTudo(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
	"github.com/pauloeilson-hash/ctrlpgto/internal/dto"
	"github.com/pauloeilson-hash/ctrlpgto/internal/export"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/query"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
)

// FrotaHandler exposes the vehicle fleet: vehicle and fill CRUD, dashboard
// statistics, report breakdowns and backups.
type FrotaHandler struct {
	svc service.FrotaService
}

func NewFrotaHandler(svc service.FrotaService) *FrotaHandler {
	return &FrotaHandler{svc: svc}
}

func (h *FrotaHandler) ListarVeiculos(c *gin.Context) {
	veiculos, err := h.svc.ListarVeiculos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, veiculos)
}

func (h *FrotaHandler) CriarVeiculo(c *gin.Context) {
	var req dto.CriarVeiculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	veiculo, err := h.svc.CriarVeiculo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, veiculo)
}

func (h *FrotaHandler) AtualizarVeiculo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarVeiculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	veiculo, err := h.svc.AtualizarVeiculo(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, veiculo)
}

func (h *FrotaHandler) ExcluirVeiculo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.ExcluirVeiculo(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FrotaHandler) listarFiltrado(c *gin.Context) ([]model.Abastecimento, bool) {
	var filter query.AbastecimentoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return nil, false
	}
	fills, err := h.svc.ListarAbastecimentos(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return fills, true
}

func (h *FrotaHandler) ListarAbastecimentos(c *gin.Context) {
	fills, ok := h.listarFiltrado(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, fills)
}

func (h *FrotaHandler) CriarAbastecimento(c *gin.Context) {
	var req dto.CriarAbastecimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fill, err := h.svc.CriarAbastecimento(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fill)
}

func (h *FrotaHandler) AtualizarAbastecimento(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CriarAbastecimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fill, err := h.svc.AtualizarAbastecimento(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fill)
}

func (h *FrotaHandler) ExcluirAbastecimento(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.ExcluirAbastecimento(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FrotaHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Relatorios returns every fleet report in one payload: spend per vehicle,
// monthly evolution and spend per fuel type.
func (h *FrotaHandler) Relatorios(c *gin.Context) {
	veiculos, err := h.svc.ListarVeiculos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	fills, err := h.svc.ListarAbastecimentos(c.Request.Context(), query.AbastecimentoFilter{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gastosPorVeiculo":     query.GastosPorVeiculo(veiculos),
		"evolucaoMensal":       query.EvolucaoMensal(fills),
		"gastosPorCombustivel": query.GastosPorCombustivel(fills),
	})
}

func (h *FrotaHandler) ExportCSV(c *gin.Context) {
	fills, ok := h.listarFiltrado(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteAbastecimentosCSV(&buf, fills); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="abastecimentos.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *FrotaHandler) Backup(c *gin.Context) {
	backup, err := h.svc.ExportarBackup(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="backup_frota.json"`)
	c.JSON(http.StatusOK, backup)
}

func (h *FrotaHandler) RestaurarBackup(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Arquivo inválido"))
		return
	}
	if err := h.svc.ImportarBackup(c.Request.Context(), raw); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FrotaHandler) LimparTudo(c *gin.Context) {
	if err := h.svc.LimparTudo(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauloeilson-hash/ctrlpgto/internal/config"
	"github.com/pauloeilson-hash/ctrlpgto/internal/handler"
	"github.com/pauloeilson-hash/ctrlpgto/internal/infra"
	"github.com/pauloeilson-hash/ctrlpgto/internal/middleware"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// Deps carries everything the router needs wired up by main.
type Deps struct {
	KV         store.KV
	Pagamentos service.PagamentoService
	Frota      service.FrotaService
	Estoque    service.EstoqueService
	Backups    service.BackupService
	Drive      *infra.DriveClient
	DriveCB    *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Collection ← KV
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	pagamentosH := handler.NewPagamentosHandler(deps.Pagamentos, deps.Drive, deps.DriveCB, deps.KV, cfg.BackupFilename)
	frotaH := handler.NewFrotaHandler(deps.Frota)
	estoqueH := handler.NewEstoqueHandler(deps.Estoque, deps.Backups)
	preferenciasH := handler.NewPreferenciasHandler(deps.KV)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(deps.KV))

	v1 := r.Group("/v1")
	{
		pagamentos := v1.Group("/pagamentos")
		{
			pagamentos.GET("", pagamentosH.Listar)
			pagamentos.POST("", pagamentosH.Criar)
			pagamentos.PUT("/:id", pagamentosH.Atualizar)
			pagamentos.DELETE("/:id", pagamentosH.Excluir)
			pagamentos.PATCH("/status", pagamentosH.AtualizarStatus)
			pagamentos.DELETE("", pagamentosH.LimparTudo)

			pagamentos.GET("/export/csv", pagamentosH.ExportCSV)
			pagamentos.GET("/export/xlsx", pagamentosH.ExportXLSX)
			pagamentos.GET("/export/pdf", pagamentosH.ExportPDF)
			pagamentos.GET("/relatorio/anual/:ano", pagamentosH.RelatorioAnual)
			pagamentos.POST("/import/csv", pagamentosH.ImportCSV)

			pagamentos.GET("/backup", pagamentosH.Backup)
			pagamentos.POST("/backup", pagamentosH.RestaurarBackup)
			pagamentos.GET("/backup/drive/auth", pagamentosH.DriveAuthURL)
			pagamentos.GET("/backup/drive/callback", pagamentosH.DriveCallback)
			pagamentos.POST("/backup/drive", pagamentosH.DriveBackup)
			pagamentos.POST("/backup/drive/restore", pagamentosH.DriveRestore)
		}

		frota := v1.Group("/frota")
		{
			frota.GET("/veiculos", frotaH.ListarVeiculos)
			frota.POST("/veiculos", frotaH.CriarVeiculo)
			frota.PUT("/veiculos/:id", frotaH.AtualizarVeiculo)
			frota.DELETE("/veiculos/:id", frotaH.ExcluirVeiculo)

			frota.GET("/abastecimentos", frotaH.ListarAbastecimentos)
			frota.POST("/abastecimentos", frotaH.CriarAbastecimento)
			frota.PUT("/abastecimentos/:id", frotaH.AtualizarAbastecimento)
			frota.DELETE("/abastecimentos/:id", frotaH.ExcluirAbastecimento)
			frota.GET("/abastecimentos/export/csv", frotaH.ExportCSV)

			frota.GET("/stats", frotaH.Stats)
			frota.GET("/relatorios", frotaH.Relatorios)

			frota.GET("/backup", frotaH.Backup)
			frota.POST("/backup", frotaH.RestaurarBackup)
			frota.DELETE("", frotaH.LimparTudo)
		}

		estoque := v1.Group("/estoque")
		{
			estoque.GET("/produtos", estoqueH.ListarProdutos)
			estoque.POST("/produtos", estoqueH.CriarProduto)
			estoque.PUT("/produtos/:id", estoqueH.AtualizarProduto)
			estoque.DELETE("/produtos/:id", estoqueH.ExcluirProduto)
			estoque.GET("/produtos/export/csv", estoqueH.ExportProdutosCSV)

			estoque.GET("/categorias", estoqueH.ListarCategorias)
			estoque.POST("/categorias", estoqueH.CriarCategoria)
			estoque.PUT("/categorias/:id", estoqueH.AtualizarCategoria)
			estoque.DELETE("/categorias/:id", estoqueH.ExcluirCategoria)

			estoque.POST("/entradas", estoqueH.RegistrarEntrada)
			estoque.POST("/saidas", estoqueH.RegistrarSaida)
			estoque.GET("/movimentacoes", estoqueH.ListarMovimentacoes)
			estoque.GET("/movimentacoes/export", estoqueH.ExportMovimentacoes)

			estoque.GET("/stats", estoqueH.Stats)
			estoque.GET("/alertas", estoqueH.Alertas)
			estoque.GET("/validades", estoqueH.Validades)
			estoque.GET("/resumos", estoqueH.Resumos)

			estoque.GET("/backup", estoqueH.Backup)
			estoque.POST("/backup", estoqueH.RestaurarBackup)
			estoque.GET("/backups", estoqueH.ListarBackups)
			estoque.GET("/backup/config", estoqueH.BackupConfig)
			estoque.PUT("/backup/config", estoqueH.AtualizarBackupConfig)
			estoque.DELETE("", estoqueH.LimparTudo)
		}

		preferencias := v1.Group("/preferencias")
		{
			preferencias.GET("", preferenciasH.Obter)
			preferencias.PUT("", preferenciasH.Atualizar)
		}
	}

	return r
}

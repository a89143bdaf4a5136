package service

import (
	"errors"
	"strings"
)

// ValidationErrors carries every violated rule of one mutation. The service
// never fails fast: all problems of a request are collected and reported
// together.
type ValidationErrors []string

func (v ValidationErrors) Error() string { return strings.Join(v, "; ") }

// Not-found sentinels — raised when a mutation references an id that no
// longer exists (stale client state).
var (
	ErrPagamentoNaoEncontrado     = errors.New("pagamento não encontrado")
	ErrVeiculoNaoEncontrado       = errors.New("veículo não encontrado")
	ErrAbastecimentoNaoEncontrado = errors.New("abastecimento não encontrado")
	ErrProdutoNaoEncontrado       = errors.New("produto não encontrado")
	ErrCategoriaNaoEncontrada     = errors.New("categoria não encontrada")
	ErrLoteNaoEncontrado          = errors.New("lote não encontrado")
)

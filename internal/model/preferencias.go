package model

import "time"

// Preferencias holds app-level settings persisted under their own key.
type Preferencias struct {
	Tema string `json:"tema"`
}

func (Preferencias) RecordID() int64 { return 1 }

// Automatic backup frequencies.
const (
	BackupDiario  = "diario"
	BackupSemanal = "semanal"
	BackupMensal  = "mensal"
)

// BackupConfig controls the automatic backup scheduler.
type BackupConfig struct {
	Ativo        bool       `json:"ativo"`
	Frequencia   string     `json:"frequencia"`
	UltimoBackup *time.Time `json:"ultimoBackup"`
}

func (BackupConfig) RecordID() int64 { return 1 }

// DeveFazerBackup reports whether a new automatic backup is due at now,
// given the configured frequency.
func (c BackupConfig) DeveFazerBackup(now time.Time) bool {
	if !c.Ativo {
		return false
	}
	if c.UltimoBackup == nil {
		return true
	}
	elapsed := now.Sub(*c.UltimoBackup)
	switch c.Frequencia {
	case BackupSemanal:
		return elapsed >= 7*24*time.Hour
	case BackupMensal:
		return elapsed >= 30*24*time.Hour
	default: // diario
		return elapsed >= 24*time.Hour
	}
}

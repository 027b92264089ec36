// Package clean runs the cleaning stages of a Config over a Frame in a fixed
// order: drop, cast, fill_na, impute, rank, convert.
package clean

import (
	"go.uber.org/zap"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
	"github.com/wdm0006/mlprep/pkg/transform/columns"
	"github.com/wdm0006/mlprep/pkg/transform/derive"
	"github.com/wdm0006/mlprep/pkg/transform/impute"
)

// Stage keys, in execution order.
const (
	KeyDrop    = "drop_cols"
	KeyCast    = "cast_cols_dtype"
	KeyFillNA  = "fill_na"
	KeyImpute  = "impute_cols"
	KeyRank    = "rank_cols"
	KeyConvert = "convert_cols"
)

// Keys lists the recognized stage keys in execution order.
var Keys = []string{KeyDrop, KeyCast, KeyFillNA, KeyImpute, KeyRank, KeyConvert}

type DropStage struct{ Columns []string }

type CastStage struct {
	Columns []string
	Type    ds.Kind
}

type FillNAStage struct {
	Columns []string
	Value   any
}

type ImputeStage struct{ Rules []expression.Assignment }

// DeriveStage configures both rank_cols and convert_cols.
type DeriveStage struct{ Rules []expression.Assignment }

// Config selects the stages to run. A nil stage is skipped. The order of the
// fields does not matter; Stages always returns them in execution order.
type Config struct {
	Drop    *DropStage
	Cast    *CastStage
	FillNA  *FillNAStage
	Impute  *ImputeStage
	Rank    *DeriveStage
	Convert *DeriveStage

	// Ignored holds the unrecognized keys skipped by ParseConfig.
	Ignored []string
}

// Stages returns the configured stages as transforms in execution order.
func (c Config) Stages() []ds.Transform { return c.stages(zap.NewNop()) }

func (c Config) stages(log *zap.Logger) []ds.Transform {
	var out []ds.Transform
	if c.Drop != nil {
		out = append(out, &columns.Drop{Columns: c.Drop.Columns})
	}
	if c.Cast != nil {
		out = append(out, &columns.Cast{Columns: c.Cast.Columns, Type: c.Cast.Type})
	}
	if c.FillNA != nil {
		out = append(out, &impute.FillNull{Columns: c.FillNA.Columns, Value: c.FillNA.Value, Log: log})
	}
	if c.Impute != nil {
		out = append(out, &impute.Expr{Rules: c.Impute.Rules})
	}
	if c.Rank != nil {
		out = append(out, &derive.Derive{Key: KeyRank, Rules: c.Rank.Rules})
	}
	if c.Convert != nil {
		out = append(out, &derive.Derive{Key: KeyConvert, Rules: c.Convert.Rules})
	}
	return out
}

// Empty reports whether no stage is configured.
func (c Config) Empty() bool {
	return c.Drop == nil && c.Cast == nil && c.FillNA == nil && c.Impute == nil && c.Rank == nil && c.Convert == nil
}

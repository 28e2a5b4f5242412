package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Model maintenance helpers, driven by environment flags in main:

	GENERATE_MODELS=true         migrate, report, then write typed query helpers to ./generated
	GENERATE_COLUMN_REPORT=true  only print the column mismatch report

The column mismatch report lists database columns that no field of the
corresponding Go model maps to, e.g. a column added by hand in production:

	table=novels unmapped=[legacy_rank]
*/

// Migratable returns every model owned by the discovery schema in migration order.
func Migratable() []interface{} {
	return []interface{}{
		&Tag{},
		&Novel{},
		&NovelTag{},
	}
}

// GenerateModels migrates the schema, logs the column report and runs gorm/gen.
func GenerateModels(db *gorm.DB, outPath string) error {
	if outPath == "" {
		outPath = "./generated"
	}

	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(Migratable()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	if _, err := GenerateColumnMismatchReport(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(
		Tag{},
		Novel{},
		NovelTag{},
	)
	g.Execute()

	log.Info().Str("outPath", outPath).Msg("model generation complete")
	return nil
}

// ColumnMismatch lists the columns of one table that no model field maps to.
type ColumnMismatch struct {
	Table    string
	Unmapped []string
}

// GenerateColumnMismatchReport compares live table columns with the model
// schemas. Tables that do not exist yet are skipped.
func GenerateColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	cache := &sync.Map{}
	var report []ColumnMismatch
	total := 0

	for _, model := range Migratable() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse schema for %T: %w", model, err)
		}

		if !db.Migrator().HasTable(s.Table) {
			log.Info().Str("table", s.Table).Msg("table does not exist yet")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(s.Table)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", s.Table, err)
		}

		mapped := make(map[string]bool, len(s.DBNames))
		for _, name := range s.DBNames {
			mapped[name] = true
		}

		var unmapped []string
		for _, ct := range columnTypes {
			if !mapped[ct.Name()] {
				unmapped = append(unmapped, ct.Name())
			}
		}
		sort.Strings(unmapped)

		if len(unmapped) > 0 {
			log.Warn().Str("table", s.Table).Strs("unmapped", unmapped).Msg("columns not accounted for in model")
		}
		total += len(unmapped)
		report = append(report, ColumnMismatch{Table: s.Table, Unmapped: unmapped})
	}

	log.Info().Int("total", total).Msg("column mismatch report complete")
	return report, nil
}

// Package vectorutils is the vector store utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/offprinthq/offprint/pkg/vector"
	"github.com/offprinthq/offprint/pkg/vector/sqlitevec"
)

type NewStoreOpts struct {
	ProviderType string
	DBPath       string
	Dimensions   uint
	ModelVersion string
	Logger       *zap.Logger
}

func NewStore(o *NewStoreOpts) (vector.Store, error) {
	switch o.ProviderType {
	case "sqlitevec":
		return sqlitevec.NewStore(sqlitevec.Config{
			DBPath:       o.DBPath,
			Dimensions:   o.Dimensions,
			ModelVersion: o.ModelVersion,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

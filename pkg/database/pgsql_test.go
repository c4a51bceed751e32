package database_test

import (
	"context"
	"testing"

	"github.com/SscSPs/currency_converter/pkg/database"
	"github.com/stretchr/testify/assert"
)

func TestNewPgxPool_RejectsBadURL(t *testing.T) {
	_, err := database.NewPgxPool(context.Background(), "", false)
	assert.Error(t, err)

	_, err = database.NewPgxPool(context.Background(), "postgres://%zz", false)
	assert.Error(t, err)
}

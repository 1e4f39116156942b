package pdf

import (
	"context"
	"io"
	"time"
)

// StatementData is everything printed on a customer's debt statement.
type StatementData struct {
	CustomerName string
	TankNo       string
	Phone        string
	AreaName     string
	IssuedAt     time.Time
	Lines        []StatementLine
	Total        int64
}

type StatementLine struct {
	Date      time.Time
	Notes     string
	Amount    int64
	Remaining int64
}

type Provider interface {
	GenerateDebtStatement(ctx context.Context, data StatementData) (io.Reader, error)
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"invalid password", &pgconn.PgError{Code: "28P01"}, false},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"refused op error", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"reset op error", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"temporary dns", &net.DNSError{Err: "lookup", IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{Err: "lookup", IsNotFound: true}, false},
		{"message match", errors.New("server closed the connection unexpectedly"), true},
		{"plain error", errors.New("syntax error at or near"), false},
		{"context canceled", context.Canceled, false},
	}

	c := NewPostgreSQLErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

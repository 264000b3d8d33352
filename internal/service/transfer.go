package service

import (
	"context"
	"encoding/json"
	"fmt"

	"finbook/internal/amqp"
	"finbook/internal/core"
)

// Export serializes the authoritative transaction list as an indented JSON
// array and suggests a timestamped file name.
func (s *Service) Export(ctx context.Context) ([]byte, string, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode transactions: %w", err)
	}
	name := fmt.Sprintf("finbook-export-%s.json", s.now().Format("20060102-150405"))
	return data, name, nil
}

// Import replaces the entire list with the decoded payload. Malformed JSON
// is rejected with nothing applied; beyond well-formedness the records are
// taken as-is, matching the export wire format. Ids are reassigned by the
// store.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return 0, fmt.Errorf("decode import payload: %w", err)
	}
	if err := s.store.Replace(ctx, txs); err != nil {
		return 0, fmt.Errorf("replace transactions: %w", err)
	}
	s.publish(ctx, amqp.OpReplace, "")
	s.reload(ctx)
	return len(txs), nil
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"finbook/internal/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	svc.Create(ctx, core.Transaction{
		Description: "Salary", Amount: core.Money{Cents: 500000}, Type: core.Income,
	})
	svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000},
		Type: core.Expense, Recurring: true, DueDay: 1,
	})

	data, name, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(name, "finbook-export-") || !strings.HasSuffix(name, ".json") {
		t.Fatalf("unexpected export name %q", name)
	}

	// Import into a fresh service.
	fs2 := newFakeStore()
	svc2 := newTestService(fs2)
	count, err := svc2.Import(ctx, data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported, got %d", count)
	}

	// Everything but the store-assigned ids must round-trip.
	orig := svc.Transactions()
	imported := svc2.Transactions()
	if len(imported) != len(orig) {
		t.Fatalf("expected %d records, got %d", len(orig), len(imported))
	}
	byDesc := make(map[string]core.Transaction)
	for _, tx := range imported {
		byDesc[tx.Description] = tx
	}
	for _, want := range orig {
		got, ok := byDesc[want.Description]
		if !ok {
			t.Fatalf("record %q missing after import", want.Description)
		}
		if got.Amount != want.Amount || got.Type != want.Type ||
			got.Recurring != want.Recurring || got.DueDay != want.DueDay {
			t.Fatalf("record %q changed: %+v vs %+v", want.Description, got, want)
		}
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense,
	})

	if _, err := svc.Import(ctx, []byte(`{"not": "an array"`)); err == nil {
		t.Fatal("expected decode error")
	}
	if len(fs.txs) != 1 {
		t.Fatal("failed import must leave the store untouched")
	}
}

func TestImportReplacesWholeList(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	svc.Create(ctx, core.Transaction{
		Description: "old", Amount: core.Money{Cents: 100}, Type: core.Expense,
	})

	payload, _ := json.Marshal([]core.Transaction{
		{Description: "new", Amount: core.Money{Cents: 200}, Type: core.Income},
	})
	count, err := svc.Import(ctx, payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 imported, got %d", count)
	}
	txs := svc.Transactions()
	if len(txs) != 1 || txs[0].Description != "new" {
		t.Fatalf("expected import to replace the list, got %+v", txs)
	}
}

func TestExportEmptyListIsArray(t *testing.T) {
	svc := newTestService(newFakeStore())
	data, _, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		t.Fatalf("export must be a JSON array: %v (%s)", err, data)
	}
	if strings.TrimSpace(string(data)) == "null" {
		t.Fatal("empty export should be [], not null")
	}
}

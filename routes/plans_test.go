// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
//
// SPDX-License-Identifier: Apache-2.0
package routes

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/humaidq/coinbook/db"
)

func TestPlanResponseContract(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(planMutationResponse{
		Plan:           &db.PaymentPlan{Name: "Rent", Amount: decimal.NewFromInt(500)},
		RecordsCreated: 12,
	})
	if err != nil {
		t.Fatalf("failed to marshal plan response: %v", err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to unmarshal plan response: %v", err)
	}

	if _, ok := got["plan"]; !ok {
		t.Error("plan response is missing the plan key")
	}

	if string(got["recordsCreated"]) != "12" {
		t.Errorf("recordsCreated = %s, want 12", got["recordsCreated"])
	}
}

func TestGenerateRecordsResponseContract(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(generateRecordsResponse{
		TotalCreated: 3,
		Details: []planGeneration{
			{PlanName: "Rent", RecordsCreated: 3},
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal generate response: %v", err)
	}

	var got struct {
		TotalCreated int `json:"totalCreated"`
		Details      []map[string]json.RawMessage
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to unmarshal generate response: %v", err)
	}

	if got.TotalCreated != 3 {
		t.Errorf("totalCreated = %d, want 3", got.TotalCreated)
	}

	if len(got.Details) != 1 {
		t.Fatalf("got %d details, want 1", len(got.Details))
	}

	if string(got.Details[0]["recordsCreated"]) != "3" {
		t.Errorf("detail recordsCreated = %s, want 3", got.Details[0]["recordsCreated"])
	}
}

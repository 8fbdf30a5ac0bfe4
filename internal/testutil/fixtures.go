package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"aisle/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestScenario creates a budget scenario with a default total budget.
func CreateTestScenario(t *testing.T, db *gorm.DB, userID string) *models.Scenario {
	t.Helper()
	return CreateTestScenarioWithBudget(t, db, userID, decimal.NewFromInt(25000))
}

// CreateTestScenarioWithBudget creates a scenario with the given total budget.
func CreateTestScenarioWithBudget(t *testing.T, db *gorm.DB, userID string, totalBudget decimal.Decimal) *models.Scenario {
	t.Helper()

	scenario := &models.Scenario{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Scenario %d", nextID()),
		Currency:    "USD",
		TotalBudget: totalBudget,
	}
	if err := db.Create(scenario).Error; err != nil {
		t.Fatalf("failed to create test scenario: %v", err)
	}
	return scenario
}

// CreateTestFolder creates a folder node under the given parent (nil for root).
func CreateTestFolder(t *testing.T, db *gorm.DB, scenarioID string, parentID *string) *models.BudgetNode {
	t.Helper()

	node := &models.BudgetNode{
		ScenarioID: scenarioID,
		ParentID:   parentID,
		Name:       fmt.Sprintf("Test Folder %d", nextID()),
		Kind:       models.NodeKindFolder,
		Allocated:  decimal.Zero,
		Spent:      decimal.Zero,
	}
	if err := db.Create(node).Error; err != nil {
		t.Fatalf("failed to create test folder: %v", err)
	}
	return node
}

// CreateTestItem creates a budget item with the given allocated and spent amounts.
func CreateTestItem(t *testing.T, db *gorm.DB, scenarioID string, parentID *string, allocated, spent decimal.Decimal) *models.BudgetNode {
	t.Helper()

	node := &models.BudgetNode{
		ScenarioID: scenarioID,
		ParentID:   parentID,
		Name:       fmt.Sprintf("Test Item %d", nextID()),
		Kind:       models.NodeKindItem,
		Allocated:  allocated,
		Spent:      spent,
	}
	if err := db.Create(node).Error; err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return node
}

// CreateTestVendor creates a vendor for the given user.
func CreateTestVendor(t *testing.T, db *gorm.DB, userID string) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		UserID: userID,
		Name:   fmt.Sprintf("Test Vendor %d", nextID()),
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("failed to create test vendor: %v", err)
	}
	return vendor
}

// CreateTestPayment creates an unpaid ledger entry against a node.
func CreateTestPayment(t *testing.T, db *gorm.DB, userID, scenarioID, nodeID string, kind models.PaymentKind, amount decimal.Decimal) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		UserID:     userID,
		ScenarioID: scenarioID,
		NodeID:     nodeID,
		Kind:       kind,
		Amount:     amount,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// CreateTestPaidPayment creates a settled ledger entry against a node.
func CreateTestPaidPayment(t *testing.T, db *gorm.DB, userID, scenarioID, nodeID string, kind models.PaymentKind, amount decimal.Decimal) *models.Payment {
	t.Helper()

	paidAt := time.Now()
	payment := &models.Payment{
		UserID:     userID,
		ScenarioID: scenarioID,
		NodeID:     nodeID,
		Kind:       kind,
		Amount:     amount,
		PaidAt:     &paidAt,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test paid payment: %v", err)
	}
	return payment
}

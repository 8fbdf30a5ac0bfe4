package services_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"aisle/internal/models"
	"aisle/internal/pagination"
	"aisle/internal/services"
	"aisle/internal/testutil"
)

func TestCreateVendor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := services.NewVendorService(db)

	user := testutil.CreateTestUser(t, db)

	t.Run("creates vendor", func(t *testing.T) {
		vendor, err := svc.CreateVendor(user.ID, "Bloom & Petal", "Sam", "sam@bloom.example", "", "", "")
		testutil.AssertNoError(t, err)
		if vendor.ID == "" {
			t.Error("vendor should get an ID")
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.CreateVendor(user.ID, "", "", "", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserVendors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := services.NewVendorService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	for i := 0; i < 2; i++ {
		testutil.CreateTestVendor(t, db, user.ID)
	}
	testutil.CreateTestVendor(t, db, other.ID)

	page, err := svc.GetUserVendors(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 vendors, got %d", page.TotalItems)
	}
}

func TestUpdateVendor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := services.NewVendorService(db)

	user := testutil.CreateTestUser(t, db)
	vendor := testutil.CreateTestVendor(t, db, user.ID)

	name := "Renamed Catering Co"
	_, err := svc.UpdateVendor(user.ID, vendor.ID, &name, nil, nil, nil, nil, nil)
	testutil.AssertNoError(t, err)

	var stored models.Vendor
	testutil.AssertNoError(t, db.First(&stored, "id = ?", vendor.ID).Error)
	if stored.Name != name {
		t.Errorf("expected renamed vendor, got %s", stored.Name)
	}
}

func TestDeleteVendor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := services.NewVendorService(db)

	user := testutil.CreateTestUser(t, db)
	scenario := testutil.CreateTestScenario(t, db, user.ID)
	vendor := testutil.CreateTestVendor(t, db, user.ID)

	item := testutil.CreateTestItem(t, db, scenario.ID, nil, decimal.NewFromInt(100), decimal.Zero)
	testutil.AssertNoError(t, db.Model(item).Update("vendor_id", vendor.ID).Error)

	testutil.AssertNoError(t, svc.DeleteVendor(user.ID, vendor.ID))

	var stored models.BudgetNode
	testutil.AssertNoError(t, db.First(&stored, "id = ?", item.ID).Error)
	if stored.VendorID != nil {
		t.Error("deleting a vendor should detach it from nodes")
	}

	_, err := svc.GetVendorByID(user.ID, vendor.ID)
	testutil.AssertAppError(t, err, "VENDOR_NOT_FOUND")
}

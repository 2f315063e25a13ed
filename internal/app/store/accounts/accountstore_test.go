package accountstore_test

import (
	"testing"

	accountstore "github.com/dalemusser/crewdeck/internal/app/store/accounts"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"github.com/dalemusser/crewdeck/internal/domain/models"
	"github.com/dalemusser/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_NormalizesAndDeduplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accountstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()

	acct, err := store.Create(ctx, models.Account{
		UserID:     userID,
		Provider:   "Google",
		ProviderID: "G-ABC",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if acct.Provider != "google" || acct.ProviderID != "g-abc" {
		t.Errorf("identity not normalized: %s/%s", acct.Provider, acct.ProviderID)
	}

	// The same external identity cannot bind twice, even for another
	// user.
	_, err = store.Create(ctx, models.Account{
		UserID:     primitive.NewObjectID(),
		Provider:   "google",
		ProviderID: "g-abc",
	})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestGetByProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accountstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Account{
		UserID:     userID,
		Provider:   "google",
		ProviderID: "g-xyz",
	}); err != nil {
		t.Fatal(err)
	}

	acct, err := store.GetByProvider(ctx, "GOOGLE", "G-XYZ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acct.UserID != userID {
		t.Error("wrong account resolved")
	}

	_, err = store.GetByProvider(ctx, "google", "missing")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListAndDeleteByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := accountstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for _, p := range []struct{ provider, pid string }{
		{models.ProviderLocal, "me@example.com"},
		{models.ProviderGoogle, "g-123"},
	} {
		if _, err := store.Create(ctx, models.Account{
			UserID: userID, Provider: p.provider, ProviderID: p.pid,
		}); err != nil {
			t.Fatal(err)
		}
	}

	accts, err := store.ListByUser(ctx, userID)
	if err != nil || len(accts) != 2 {
		t.Fatalf("list = %d accounts, err = %v", len(accts), err)
	}

	n, err := store.DeleteByUser(ctx, userID)
	if err != nil || n != 2 {
		t.Fatalf("deleted %d, err = %v", n, err)
	}
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendaviva/tienda/internal/domain"
	"go.etcd.io/bbolt"
)

func openTestBolt(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "carts.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBoltPersistenceRoundTrip(t *testing.T) {
	db := openTestBolt(t)
	persist := NewBoltCartPersistence(db, "session-1")

	items := []domain.CartItem{
		{
			CartID:        "c1",
			ProductID:     100,
			Name:          "Remera",
			Price:         1500,
			Quantity:      2,
			SelectedColor: "#ff0000",
			SelectedVariants: map[string]domain.VariantOption{
				"Talle": {Label: "S", Value: "S"},
			},
		},
	}
	require.NoError(t, persist.Save(items))

	raw, err := persist.Load()
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "c1", raw[0].CartID)
	assert.Equal(t, int64(100), raw[0].ProductID)
	assert.Equal(t, "#ff0000", raw[0].SelectedColor)
	assert.Equal(t, "S", raw[0].SelectedVariants["Talle"].Value)
}

func TestBoltPersistenceEmptyKey(t *testing.T) {
	db := openTestBolt(t)
	persist := NewBoltCartPersistence(db, "never-saved")

	raw, err := persist.Load()
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestBoltPersistenceKeysAreIsolated(t *testing.T) {
	db := openTestBolt(t)
	a := NewBoltCartPersistence(db, "session-a")
	b := NewBoltCartPersistence(db, "session-b")

	require.NoError(t, a.Save([]domain.CartItem{{CartID: "c1", Quantity: 1}}))

	rawB, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, rawB)
}

// Entries persisted before color normalization carried the color as an
// object. Loading through the cart must hand back plain strings.
func TestLegacyObjectColorRoundTrip(t *testing.T) {
	db := openTestBolt(t)
	legacy := []byte(`[{"cartId":"c1","productId":"100","name":"Remera","quantity":1,` +
		`"selectedColor":{"name":"Rojo","value":"#ff0000"}}]`)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte("carts"))
		if err != nil {
			return err
		}
		return bk.Put([]byte("session-legacy"), legacy)
	}))

	cart := NewCart(NewBoltCartPersistence(db, "session-legacy"))
	cart.Restore()

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "#ff0000", items[0].SelectedColor)
}

func TestMalformedPayloadLoadsAsEmptyCart(t *testing.T) {
	db := openTestBolt(t)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte("carts"))
		if err != nil {
			return err
		}
		return bk.Put([]byte("session-bad"), []byte("not a json list"))
	}))

	cart := NewCart(NewBoltCartPersistence(db, "session-bad"))
	cart.Restore()
	assert.Empty(t, cart.Items())
}

package store

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/domain"
	"go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var cartBucket = []byte("carts")

// BoltCartPersistence stores one cart as a JSON list under a single fixed
// key in a bbolt bucket. Each instance is bound to one cart key (one
// shopper session).
type BoltCartPersistence struct {
	db  *bbolt.DB
	key []byte
}

func NewBoltCartPersistence(db *bbolt.DB, cartKey string) *BoltCartPersistence {
	return &BoltCartPersistence{db: db, key: []byte(cartKey)}
}

// Load reads the persisted item list. A missing bucket or key is an empty
// cart; an unreadable payload is returned as an error for the cart to
// discard.
func (p *BoltCartPersistence) Load() ([]RawCartItem, error) {
	var payload []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(cartBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(p.key); v != nil {
			payload = make([]byte, len(v))
			copy(payload, v)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "cart load")
	}
	if len(payload) == 0 {
		return nil, nil
	}
	var items []RawCartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, errors.Wrap(err, "cart payload unreadable")
	}
	return items, nil
}

// Save serializes the full item list and writes it under the cart key
func (p *BoltCartPersistence) Save(items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "cart marshal")
	}
	err = p.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(cartBucket)
		if err != nil {
			return err
		}
		return b.Put(p.key, payload)
	})
	return errors.Wrap(err, "cart save")
}

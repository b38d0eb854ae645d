package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Transaction is a single historical sale observed on a venue. ID is a stable
// content hash, not a sequence number: the feed may re-observe the same sale
// in overlapping pages and dedup relies on the hash being identical across
// observations.
type Transaction struct {
	Size  ShoeSize
	Price float64
	Time  time.Time
	ID    string
}

// TransactionID derives the stable content hash for a sale from its price,
// size description, and counterparty name, matching the upstream feed's
// identity rule.
func TransactionID(price, sizeDesc, counterparty string) string {
	h := md5.New()
	h.Write([]byte(price))
	h.Write([]byte(sizeDesc))
	h.Write([]byte(counterparty))
	return hex.EncodeToString(h.Sum(nil))
}

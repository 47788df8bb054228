package main

import (
	"math/rand"
	"time"

	"tradetracker/pkg/ledger"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xetcd"
	"tradetracker/pkg/xnats"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

var seedItems = []string{
	"Scripture of Wen",
	"Rune of Ascension",
	"Dragonbone Plate",
	"Elder Sigil",
	"Phoenix Feather",
}

// PrepareDevData prepare mysql, nats, etcd for a local compose environment
func PrepareDevData() (err error) {

	// 1. Prepare database

	err = model.Migrate()
	if err != nil {
		return
	}

	// 2. Prepare etcd and nats

	if fNatsUrl != "" {
		err = xetcd.Put(xetcd.KeyNatsService(), fNatsUrl)
		if err != nil {
			logger.Debugf("seed prepare failed with err:%s", err)
			return
		}

		var js nats.JetStreamContext
		js, err = xnats.GetJetStream()
		if err != nil {
			logger.Debugf("seed prepare failed with err:%s", err)
			return
		}
		err = xnats.EnsureStream(js)
		if err != nil {
			logger.Debugf("seed prepare failed with err:%s", err)
			return
		}
	}

	// 3. Seed items and random transactions

	owner := fOwner
	if owner == 0 {
		owner = 1
	}

	db := model.GetMySQL()

	itemIDs := make([]int64, 0, len(seedItems))
	for _, name := range seedItems {
		item := model.Item{Name: name}
		err = db.Where("`name`=?", name).FirstOrCreate(&item).Error
		if err != nil {
			return
		}
		itemIDs = append(itemIDs, item.ID)
	}

	types := []string{
		model.TransTypeBuy, model.TransTypeBuy, model.TransTypeInstantBuy,
		model.TransTypeSell, model.TransTypeInstantSell,
		model.TransTypePlacingBuy, model.TransTypePlacingSell,
	}

	day := time.Now().AddDate(0, -6, 0)
	trans := make([]model.Transaction, 0, 500)
	for i := 0; i < 500; i++ {
		price := 1_000_000 + rand.Int63n(50_000_000)
		qty := 1 + rand.Int63n(10)
		day = day.Add(time.Duration(rand.Int63n(12)) * time.Hour)

		trans = append(trans, model.Transaction{
			Owner:       owner,
			ItemID:      itemIDs[rand.Intn(len(itemIDs))],
			Type:        types[rand.Intn(len(types))],
			Price:       decimal.NewFromInt(price),
			Quantity:    decimal.NewFromInt(qty),
			HoldingDate: model.GormTime(day),
		})
	}

	err = db.CreateInBatches(trans, 500).Error
	if err != nil {
		return
	}

	logger.Infof("seeded %d transactions for owner:%d", len(trans), owner)

	// 4. Replay everything once

	err = ledger.RecomputeAll()
	if err != nil {
		return
	}

	logger.Infof("seed prepared")
	return
}

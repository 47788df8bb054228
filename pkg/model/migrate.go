package model

// Migrate creates or updates every table the tracker uses
func Migrate() (err error) {
	defer func() {
		if err != nil {
			logger.Errorf("Migrate failed with err:%s", err)
		} else {
			logger.Infof("Migrate done")
		}
	}()

	err = db.AutoMigrate(
		Item{},
		Alias{},
		Transaction{},
		AccumulationPrice{},
		TargetSellPrice{},
		Watchlist{},
		Membership{},
		WealthData{},
		Lastkv{},
	)
	return
}

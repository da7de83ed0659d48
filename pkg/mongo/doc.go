// Package mongo connects to MongoDB with the v2 driver, retrying until the
// server answers a ping. Configuration comes from MONGODB_* variables.
//
//	client, db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(context.Background())
//	accounts := auth.NewMongoStorage(db, auth.DefaultAccountsCollection)
package mongo

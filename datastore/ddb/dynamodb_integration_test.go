/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// getIntegrationStore connects to the table named by AWS_DDB_TABLE, read from
// the environment or a .env file. The test is skipped when it is unset.
func getIntegrationStore(t *testing.T) datastore.StoreHandler {
	t.Helper()
	if err := godotenv.Load(); err != nil {
		t.Log("No .env file found, proceeding with environment variables")
	}
	if os.Getenv("AWS_DDB_TABLE") == "" {
		t.Skip("AWS_DDB_TABLE not set")
	}

	cfg := datastore.Config{"name": "integration", "pk_template": "CS-IT#{type}"}
	if endpoint := os.Getenv("AWS_DDB_ENDPOINT"); endpoint != "" {
		cfg["endpoint"] = endpoint
	}

	ht := HandlerType{}
	require.NoError(t, ht.CheckConfig(cfg))
	store, err := ht.New(cfg)
	require.NoError(t, err)
	return store
}

func TestIntegrationRoundTrip(t *testing.T) {
	store := getIntegrationStore(t)
	ctx := context.Background()

	network := models.NewNetwork()
	network.Name = "integration-net"
	network.Options = map[string]any{"subnet": "10.10.0.0/16"}

	_, err := store.Save(ctx, network)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(context.Background(), network) })

	got, err := store.Get(ctx, &models.Network{Name: "integration-net"})
	require.NoError(t, err)
	assert.Equal(t, "10.10.0.0/16", got.(*models.Network).Options["subnet"])

	list, err := store.List(ctx, models.NewNetworks())
	require.NoError(t, err)
	found := false
	for _, item := range list.Items() {
		if item.PrimaryKey() == "integration-net" {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, store.Delete(ctx, network))
	err = store.Delete(ctx, network)
	assert.True(t, errors.IsNotFound(err), "expected not found, got %v", err)
}

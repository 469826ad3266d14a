/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package commissaire

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/commissaire/datastore"
	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

func TestManagerRegister(t *testing.T) {
	m := NewManager()
	ht := newCountingHandlerType("counting")

	// Valid registration, implicit name.
	cfg := datastore.Config{}
	require.NoError(t, m.Register(ht, cfg, modelType(t, "Host")))
	assert.Equal(t, "counting", cfg["name"])

	// Valid registration, explicit name.
	cfg = datastore.Config{"name": "handle_me_harder"}
	require.NoError(t, m.Register(ht, cfg, modelType(t, "Cluster")))
	assert.Equal(t, "handle_me_harder", cfg["name"])

	// Valid registration, implicit name, name collision.
	cfg = datastore.Config{"name": "   "}
	require.NoError(t, m.Register(ht, cfg, modelType(t, "Network")))
	assert.Equal(t, "counting-1", cfg["name"])

	// Valid registration, implicit name, multiple model types.
	cfg = datastore.Config{}
	require.NoError(t, m.Register(ht, cfg,
		modelType(t, "ClusterDeploy"), modelType(t, "ClusterRestart"), modelType(t, "ClusterUpgrade")))
	assert.Equal(t, "counting-2", cfg["name"])

	// Invalid registration, explicit name, name collision.
	err := m.Register(ht, datastore.Config{"name": "handle_me_harder"}, modelType(t, "ContainerManagerConfig"))
	assert.True(t, errors.IsConfigurationError(err), "expected configuration error, got %v", err)

	// Invalid registration, implicit name, model type collision.
	cfg = datastore.Config{}
	err = m.Register(ht, cfg, modelType(t, "Host"))
	require.True(t, errors.IsConfigurationError(err), "expected configuration error, got %v", err)
	assert.Contains(t, err.Error(), `"Host"`)
	assert.Contains(t, err.Error(), "counting")
	assert.NotContains(t, cfg, "name", "failed registration must not write back a name")

	defs := m.ListHandlers()
	require.Len(t, defs, 4)
	assert.Equal(t, "counting", defs[0].Name())
	assert.Equal(t, []string{"Host"}, defs[0].ModelTypeNames())
	assert.Equal(t, "handle_me_harder", defs[1].Name())
	assert.Equal(t, "counting-1", defs[2].Name())
	assert.Equal(t, "counting-2", defs[3].Name())
	assert.Equal(t, []string{"ClusterDeploy", "ClusterRestart", "ClusterUpgrade"}, defs[3].ModelTypeNames())

	// The rejected ContainerManagerConfig registration left no trace.
	_, err = m.GetHandler(models.NewContainerManagerConfig())
	assert.True(t, errors.IsLookupFailure(err))
	assert.Equal(t, 0, ht.totalCreated())
}

func TestManagerRegisterCheckConfig(t *testing.T) {
	m := NewManager()

	ht := newCountingHandlerType("picky")
	ht.checkErr = errors.NewConfigurationError("", `missing "table"`)
	err := m.Register(ht, datastore.Config{}, modelType(t, "Host"))
	assert.Equal(t, ht.checkErr, err)

	ht.checkErr = fmt.Errorf("plain failure")
	err = m.Register(ht, datastore.Config{}, modelType(t, "Host"))
	assert.True(t, errors.IsConfigurationError(err), "check failures are configuration errors, got %v", err)

	assert.Empty(t, m.ListHandlers())

	// Host is still free to claim.
	ht.checkErr = nil
	require.NoError(t, m.Register(ht, datastore.Config{}, modelType(t, "Host")))
}

func TestManagerRegisterBadName(t *testing.T) {
	m := NewManager()
	err := m.Register(newCountingHandlerType("counting"), datastore.Config{"name": 42})
	assert.True(t, errors.IsConfigurationError(err))
	assert.True(t, errors.IsConfigurationError(m.Register(nil, datastore.Config{})))

	err = m.Register(newCountingHandlerType("counting"), datastore.Config{}, modelType(t, "Host"), nil)
	assert.True(t, errors.IsConfigurationError(err), "expected configuration error, got %v", err)
	assert.Empty(t, m.ListHandlers())
}

func TestManagerUniqueness(t *testing.T) {
	m := NewManager()
	ht := newCountingHandlerType("counting")

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Register(ht, datastore.Config{}))
	}
	require.NoError(t, m.Register(ht, datastore.Config{}, modelType(t, "Host"), modelType(t, "Hosts")))
	require.NoError(t, m.Register(ht, datastore.Config{}, modelType(t, "Cluster")))

	names := make(map[string]bool)
	owners := make(map[string]string)
	for _, def := range m.ListHandlers() {
		assert.False(t, names[def.Name()], "duplicate name %q", def.Name())
		names[def.Name()] = true
		for _, mt := range def.ModelTypeNames() {
			_, owned := owners[mt]
			assert.False(t, owned, "model type %q owned twice", mt)
			owners[mt] = def.Name()
		}
	}
	assert.Len(t, names, 7)
	assert.Equal(t, map[string]string{"Host": "counting-5", "Hosts": "counting-5", "Cluster": "counting-6"}, owners)
}

func TestManagerGetHandler(t *testing.T) {
	m := NewManager()
	ht := newCountingHandlerType("counting")
	require.NoError(t, m.Register(ht, datastore.Config{"name": "default"}, modelType(t, "Host")))
	require.NoError(t, m.Register(ht, datastore.Config{"name": "alternate"}))

	assert.Equal(t, 0, ht.totalCreated(), "handlers are created lazily")

	t.Run("DefaultRouting", func(t *testing.T) {
		first := handlerFor(t, m, hostRecord("127.0.0.1", ""))
		second := handlerFor(t, m, hostRecord("127.0.0.2", ""))
		assert.Same(t, first, second)
		assert.Equal(t, "default", first.name)
		assert.Equal(t, 1, ht.createdCount("default"))
	})

	t.Run("SourceOverride", func(t *testing.T) {
		h := handlerFor(t, m, hostRecord("127.0.0.1", "alternate"))
		assert.Equal(t, "alternate", h.name)

		again := handlerFor(t, m, hostRecord("127.0.0.1", "  alternate "))
		assert.Same(t, h, again)
		assert.Equal(t, 1, ht.createdCount("alternate"))
	})

	t.Run("SourceNamesDefault", func(t *testing.T) {
		byName := handlerFor(t, m, hostRecord("127.0.0.1", "default"))
		byType := handlerFor(t, m, hostRecord("127.0.0.1", ""))
		assert.Same(t, byType, byName)
		assert.Equal(t, 1, ht.createdCount("default"))
	})

	t.Run("UnknownSource", func(t *testing.T) {
		_, err := m.GetHandler(hostRecord("127.0.0.1", "nonexistent"))
		var noHandler *errors.NoHandlerError
		require.ErrorAs(t, err, &noHandler)
		assert.Equal(t, "nonexistent", noHandler.Key)
	})

	t.Run("UnknownModelType", func(t *testing.T) {
		_, err := m.GetHandler(models.NewCluster())
		var noHandler *errors.NoHandlerError
		require.ErrorAs(t, err, &noHandler)
		assert.Equal(t, "Cluster", noHandler.Key)
	})
}

func TestManagerGetHandlerPrimesSiblingTypes(t *testing.T) {
	m := NewManager()
	ht := newCountingHandlerType("counting")
	require.NoError(t, m.Register(ht, datastore.Config{"name": "shared"},
		modelType(t, "Cluster"), modelType(t, "Clusters"), modelType(t, "Network")))

	cluster := handlerFor(t, m, models.NewCluster())
	clusters := handlerFor(t, m, models.NewClusters())
	network := handlerFor(t, m, models.NewNetwork())
	byName := handlerFor(t, m, hostRecord("10.0.0.1", "shared"))

	assert.Same(t, cluster, clusters)
	assert.Same(t, cluster, network)
	assert.Same(t, cluster, byName)
	assert.Equal(t, 1, ht.totalCreated())
}

func TestManagerGetHandlerConcurrentFirstUse(t *testing.T) {
	m := NewManager()
	ht := newCountingHandlerType("counting")
	require.NoError(t, m.Register(ht, datastore.Config{}, modelType(t, "Host"), modelType(t, "Hosts")))

	var wg sync.WaitGroup
	handlers := make([]datastore.StoreHandler, 32)
	for i := range handlers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var model models.Model = hostRecord(fmt.Sprintf("10.0.0.%d", i), "")
			if i%2 == 1 {
				model = models.NewHosts()
			}
			h, err := m.GetHandler(model)
			assert.NoError(t, err)
			handlers[i] = h
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ht.totalCreated())
	for _, h := range handlers {
		assert.Same(t, handlers[0], h)
	}
}

func TestManagerOperations(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	ht := newCountingHandlerType("counting")
	require.NoError(t, m.Register(ht, datastore.Config{}, modelType(t, "Host"), modelType(t, "Hosts")))

	t.Run("SaveValidatesFirst", func(t *testing.T) {
		_, err := m.Save(ctx, hostRecord("", ""))
		assert.True(t, errors.IsValidationError(err))

		h := handlerFor(t, m, hostRecord("10.0.0.1", ""))
		saves, _, _, _ := h.calls()
		assert.Equal(t, 0, saves)
	})

	t.Run("GetValidatesOutput", func(t *testing.T) {
		h := handlerFor(t, m, hostRecord("10.0.0.1", ""))
		h.override(t, nil, func(models.Model) (models.Model, error) {
			return &models.Host{Address: ""}, nil
		}, nil)

		_, err := m.Get(ctx, hostRecord("10.0.0.1", ""))
		assert.True(t, errors.IsValidationError(err), "expected validation error, got %v", err)
	})

	t.Run("GetRejectsOtherType", func(t *testing.T) {
		h := handlerFor(t, m, hostRecord("10.0.0.1", ""))
		h.override(t, nil, func(models.Model) (models.Model, error) {
			c := models.NewCluster()
			c.Name = "10.0.0.1"
			return c, nil
		}, nil)

		_, err := m.Get(ctx, hostRecord("10.0.0.1", ""))
		var verr *errors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Host", verr.Model)
		assert.Contains(t, err.Error(), "Cluster")
	})

	t.Run("NoRecordFromStore", func(t *testing.T) {
		h := handlerFor(t, m, hostRecord("10.0.0.1", ""))
		h.override(t,
			func(models.Model) (models.Model, error) { return nil, nil },
			func(models.Model) (models.Model, error) { return (*models.Host)(nil), nil },
			func(models.ListModel) (models.ListModel, error) { return nil, nil },
		)

		_, err := m.Save(ctx, hostRecord("10.0.0.1", ""))
		assert.True(t, errors.IsValidationError(err), "save: expected validation error, got %v", err)

		_, err = m.Get(ctx, hostRecord("10.0.0.1", ""))
		assert.True(t, errors.IsValidationError(err), "get: expected validation error, got %v", err)

		_, err = m.List(ctx, models.NewHosts())
		assert.True(t, errors.IsValidationError(err), "list: expected validation error, got %v", err)
	})

	t.Run("NilItemFromList", func(t *testing.T) {
		h := handlerFor(t, m, hostRecord("10.0.0.1", ""))
		h.override(t, nil, nil, func(models.ListModel) (models.ListModel, error) {
			return &models.Hosts{Hosts: []*models.Host{nil}}, nil
		})

		_, err := m.List(ctx, models.NewHosts())
		assert.True(t, errors.IsValidationError(err), "expected validation error, got %v", err)
	})

	t.Run("SaveGetListDelete", func(t *testing.T) {
		_, err := m.Save(ctx, hostRecord("10.0.0.1", ""))
		require.NoError(t, err)

		got, err := m.Get(ctx, hostRecord("10.0.0.1", ""))
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1", got.PrimaryKey())

		items, err := m.List(ctx, models.NewHosts())
		require.NoError(t, err)
		assert.Len(t, items, 1)

		require.NoError(t, m.Delete(ctx, hostRecord("10.0.0.1", "")))
		err = m.Delete(ctx, hostRecord("10.0.0.1", ""))
		assert.True(t, errors.IsNotFound(err))
	})
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

func typeNamed(t *testing.T, name string) *models.Type {
	t.Helper()
	for _, mt := range models.Catalogue() {
		if mt.Name == name {
			return mt
		}
	}
	t.Fatalf("no model type %q in catalogue", name)
	return nil
}

func TestBuildAppliesDefaults(t *testing.T) {
	m, err := typeNamed(t, "Host").Build(map[string]any{"address": "10.0.0.1"})
	require.NoError(t, err)

	host, ok := m.(*models.Host)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", host.Address)
	assert.Equal(t, "root", host.RemoteUser)
	assert.Equal(t, -1, host.CPUs)
	assert.Equal(t, -1, host.Memory)
	assert.Equal(t, -1, host.Space)
	assert.Equal(t, "", host.Source)
	assert.NoError(t, host.Validate())
}

func TestBuildMalformed(t *testing.T) {
	host := typeNamed(t, "Host")

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{name: "missing required", fields: map[string]any{}},
		{name: "unknown field", fields: map[string]any{"address": "10.0.0.1", "colour": "blue"}},
		{name: "mistyped", fields: map[string]any{"address": "10.0.0.1", "cpus": "four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := host.Build(tt.fields)
			require.Error(t, err)
			assert.True(t, errors.IsMalformed(err), "expected malformed error, got %v", err)
		})
	}
}

func TestBuildJSON(t *testing.T) {
	m, err := typeNamed(t, "Cluster").BuildJSON([]byte(`{"name": "prod", "type": "host_only"}`))
	require.NoError(t, err)
	cluster := m.(*models.Cluster)
	assert.Equal(t, "prod", cluster.Name)
	assert.Equal(t, models.ClusterTypeHostOnly, cluster.Type)
	assert.Equal(t, models.ClusterStatusOK, cluster.Status)

	_, err = typeNamed(t, "Cluster").BuildJSON([]byte(`{"name": `))
	assert.True(t, errors.IsMalformed(err))
}

func TestBuildPromotedFields(t *testing.T) {
	m, err := typeNamed(t, "ClusterUpgrade").Build(map[string]any{
		"name":       "prod",
		"upgrade_to": "1.2.3",
		"started_at": "2026-10-19T08:00:00Z",
	})
	require.NoError(t, err)
	upgrade := m.(*models.ClusterUpgrade)
	assert.Equal(t, "prod", upgrade.Name)
	assert.Equal(t, "1.2.3", upgrade.UpgradeTo)
	assert.NoError(t, upgrade.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		model models.Model
		field string
	}{
		{name: "host empty address", model: models.NewHost(), field: "address"},
		{name: "host bad address", model: &models.Host{Address: "not an address!", RemoteUser: "root"}, field: "address"},
		{name: "host bad status", model: &models.Host{Address: "10.0.0.1", Status: "sleeping"}, field: "status"},
		{name: "host bad last check", model: &models.Host{Address: "10.0.0.1", LastCheck: "yesterday"}, field: "last_check"},
		{name: "cluster bad type", model: &models.Cluster{Name: "c", Status: "ok", Type: "swarm"}, field: "type"},
		{name: "network bad type", model: &models.Network{Name: "n", Type: "vxlan"}, field: "type"},
		{name: "deploy bad timestamp", model: func() models.Model {
			d := models.NewClusterDeploy()
			d.Name = "prod"
			d.FinishedAt = "soon"
			return d
		}(), field: "finished_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.model.Validate()
			require.Error(t, err)
			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.model.TypeName(), ve.Model)
		})
	}
}

func TestValidateAddresses(t *testing.T) {
	for _, addr := range []string{"10.0.0.1", "::1", "node1.example.com", "localhost"} {
		h := models.NewHost()
		h.Address = addr
		assert.NoError(t, h.Validate(), addr)
	}
}

func TestListValidation(t *testing.T) {
	hosts := models.NewHosts()
	require.NoError(t, hosts.SetItems([]models.Model{
		&models.Host{Address: "10.0.0.1"},
		&models.Host{Address: ""},
	}))
	assert.True(t, errors.IsValidationError(hosts.Validate()))

	assert.Error(t, hosts.SetItems([]models.Model{models.NewCluster()}))
}

func TestToMapSecureFields(t *testing.T) {
	creds := &models.HostCreds{Address: "10.0.0.1", SSHPrivKey: "-----BEGIN KEY-----", RemoteUser: "root"}

	public, err := models.ToMap(creds, false)
	require.NoError(t, err)
	assert.NotContains(t, public, "ssh_priv_key")
	assert.Equal(t, "10.0.0.1", public["address"])

	secure, err := models.ToMap(creds, true)
	require.NoError(t, err)
	assert.Equal(t, "-----BEGIN KEY-----", secure["ssh_priv_key"])
}

func TestEncodeDecode(t *testing.T) {
	host := models.NewHost()
	host.Address = "10.0.0.1"
	host.Status = models.HostStatusActive

	data, err := models.Encode(host)
	require.NoError(t, err)

	decoded, err := models.Decode(models.NewHost(), data)
	require.NoError(t, err)
	assert.Equal(t, host, decoded)
	assert.Equal(t, "Host(10.0.0.1)", models.Identity(decoded))
}

func TestCatalogueSecretTypes(t *testing.T) {
	var secret []string
	for _, mt := range models.Catalogue() {
		if mt.Secret {
			secret = append(secret, mt.Name)
		}
		assert.Equal(t, mt.Name, mt.New().TypeName(), "descriptor name must match record type name")
	}
	assert.Equal(t, []string{"HostCreds"}, secret)
	assert.True(t, typeNamed(t, "Hosts").IsList())
	assert.False(t, typeNamed(t, "Host").IsList())
}

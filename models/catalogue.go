/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

// Catalogue returns descriptors for every built-in model type.
// Each call returns fresh descriptors.
func Catalogue() []*Type {
	return []*Type{
		{Name: "Host", Required: []string{"address"}, New: func() Model { return NewHost() }},
		{Name: "Hosts", New: func() Model { return NewHosts() }},
		{Name: "HostCreds", Secret: true, Required: []string{"address"}, New: func() Model { return NewHostCreds() }},
		{Name: "Cluster", Required: []string{"name"}, New: func() Model { return NewCluster() }},
		{Name: "Clusters", New: func() Model { return NewClusters() }},
		{Name: "ClusterDeploy", Required: []string{"name"}, New: func() Model { return NewClusterDeploy() }},
		{Name: "ClusterRestart", Required: []string{"name"}, New: func() Model { return NewClusterRestart() }},
		{Name: "ClusterUpgrade", Required: []string{"name"}, New: func() Model { return NewClusterUpgrade() }},
		{Name: "Network", Required: []string{"name"}, New: func() Model { return NewNetwork() }},
		{Name: "Networks", New: func() Model { return NewNetworks() }},
		{Name: "ContainerManagerConfig", Required: []string{"name"}, New: func() Model { return NewContainerManagerConfig() }},
		{Name: "ContainerManagerConfigs", New: func() Model { return NewContainerManagerConfigs() }},
	}
}

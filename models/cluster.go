/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
)

// Cluster status and type values
const (
	ClusterStatusOK       = "ok"
	ClusterStatusDegraded = "degraded"
	ClusterStatusFailed   = "failed"

	ClusterTypeHostOnly   = "host_only"
	ClusterTypeKubernetes = "kubernetes"
)

// Cluster is a named set of hosts sharing a network and container manager.
type Cluster struct {
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	Type             string   `json:"type"`
	Network          string   `json:"network"`
	Hostset          []string `json:"hostset"`
	ContainerManager string   `json:"container_manager"`
}

func NewCluster() *Cluster {
	return &Cluster{
		Status:  ClusterStatusOK,
		Type:    ClusterTypeKubernetes,
		Network: DefaultNetworkName,
		Hostset: []string{},
	}
}

func (c *Cluster) TypeName() string   { return "Cluster" }
func (c *Cluster) PrimaryKey() string { return c.Name }

func (c *Cluster) Validate() error {
	return firstError(
		requireString("Cluster", "name", c.Name),
		oneOf("Cluster", "status", c.Status, ClusterStatusOK, ClusterStatusDegraded, ClusterStatusFailed),
		oneOf("Cluster", "type", c.Type, ClusterTypeHostOnly, ClusterTypeKubernetes),
	)
}

// Clusters is the list model for Cluster.
type Clusters struct {
	Clusters []*Cluster `json:"clusters"`
}

func NewClusters() *Clusters { return &Clusters{Clusters: []*Cluster{}} }

func (l *Clusters) TypeName() string   { return "Clusters" }
func (l *Clusters) PrimaryKey() string { return "" }
func (l *Clusters) Validate() error    { return validateItems(l.Clusters) }
func (l *Clusters) NewItem() Model     { return NewCluster() }

func (l *Clusters) Items() []Model {
	out := make([]Model, len(l.Clusters))
	for i, c := range l.Clusters {
		out[i] = c
	}
	return out
}

func (l *Clusters) SetItems(items []Model) error {
	clusters := make([]*Cluster, 0, len(items))
	for _, item := range items {
		c, ok := item.(*Cluster)
		if !ok {
			return fmt.Errorf("Clusters cannot hold %T", item)
		}
		clusters = append(clusters, c)
	}
	l.Clusters = clusters
	return nil
}

// clusterOperation holds the fields shared by the cluster-wide operation records.
type clusterOperation struct {
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	InProcess  []string `json:"in_process"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
}

func (o *clusterOperation) validate(model string) error {
	return firstError(
		requireString(model, "name", o.Name),
		optionalDateTime(model, "started_at", o.StartedAt),
		optionalDateTime(model, "finished_at", o.FinishedAt),
	)
}

// ClusterDeploy tracks the deployment of a version across a cluster.
type ClusterDeploy struct {
	clusterOperation
	Version  string   `json:"version"`
	Deployed []string `json:"deployed"`
}

func NewClusterDeploy() *ClusterDeploy {
	return &ClusterDeploy{
		clusterOperation: clusterOperation{InProcess: []string{}},
		Deployed:         []string{},
	}
}

func (d *ClusterDeploy) TypeName() string   { return "ClusterDeploy" }
func (d *ClusterDeploy) PrimaryKey() string { return d.Name }
func (d *ClusterDeploy) Validate() error    { return d.validate("ClusterDeploy") }

// ClusterRestart tracks a rolling restart of a cluster.
type ClusterRestart struct {
	clusterOperation
	Restarted []string `json:"restarted"`
}

func NewClusterRestart() *ClusterRestart {
	return &ClusterRestart{
		clusterOperation: clusterOperation{InProcess: []string{}},
		Restarted:        []string{},
	}
}

func (r *ClusterRestart) TypeName() string   { return "ClusterRestart" }
func (r *ClusterRestart) PrimaryKey() string { return r.Name }
func (r *ClusterRestart) Validate() error    { return r.validate("ClusterRestart") }

// ClusterUpgrade tracks an upgrade of a cluster.
type ClusterUpgrade struct {
	clusterOperation
	UpgradeTo string   `json:"upgrade_to"`
	Upgraded  []string `json:"upgraded"`
}

func NewClusterUpgrade() *ClusterUpgrade {
	return &ClusterUpgrade{
		clusterOperation: clusterOperation{InProcess: []string{}},
		Upgraded:         []string{},
	}
}

func (u *ClusterUpgrade) TypeName() string   { return "ClusterUpgrade" }
func (u *ClusterUpgrade) PrimaryKey() string { return u.Name }
func (u *ClusterUpgrade) Validate() error    { return u.validate("ClusterUpgrade") }

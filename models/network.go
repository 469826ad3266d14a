/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
)

// DefaultNetworkName is the network a new cluster joins unless told otherwise.
const DefaultNetworkName = "default"

// Network and container manager type values
const (
	NetworkTypeFlannelEtcd   = "flannel_etcd"
	NetworkTypeFlannelServer = "flannel_server"

	ContainerManagerOpenShift = "openshift"
)

// Network describes the overlay network of a cluster.
type Network struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options"`
}

func NewNetwork() *Network {
	return &Network{
		Type:    NetworkTypeFlannelEtcd,
		Options: map[string]any{},
	}
}

func (n *Network) TypeName() string   { return "Network" }
func (n *Network) PrimaryKey() string { return n.Name }

func (n *Network) Validate() error {
	return firstError(
		requireString("Network", "name", n.Name),
		oneOf("Network", "type", n.Type, NetworkTypeFlannelEtcd, NetworkTypeFlannelServer),
	)
}

// Networks is the list model for Network.
type Networks struct {
	Networks []*Network `json:"networks"`
}

func NewNetworks() *Networks { return &Networks{Networks: []*Network{}} }

func (l *Networks) TypeName() string   { return "Networks" }
func (l *Networks) PrimaryKey() string { return "" }
func (l *Networks) Validate() error    { return validateItems(l.Networks) }
func (l *Networks) NewItem() Model     { return NewNetwork() }

func (l *Networks) Items() []Model {
	out := make([]Model, len(l.Networks))
	for i, n := range l.Networks {
		out[i] = n
	}
	return out
}

func (l *Networks) SetItems(items []Model) error {
	networks := make([]*Network, 0, len(items))
	for _, item := range items {
		n, ok := item.(*Network)
		if !ok {
			return fmt.Errorf("Networks cannot hold %T", item)
		}
		networks = append(networks, n)
	}
	l.Networks = networks
	return nil
}

// ContainerManagerConfig describes how to reach a container manager.
type ContainerManagerConfig struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options"`
}

func NewContainerManagerConfig() *ContainerManagerConfig {
	return &ContainerManagerConfig{
		Type:    ContainerManagerOpenShift,
		Options: map[string]any{},
	}
}

func (c *ContainerManagerConfig) TypeName() string   { return "ContainerManagerConfig" }
func (c *ContainerManagerConfig) PrimaryKey() string { return c.Name }

func (c *ContainerManagerConfig) Validate() error {
	return firstError(
		requireString("ContainerManagerConfig", "name", c.Name),
		oneOf("ContainerManagerConfig", "type", c.Type, ContainerManagerOpenShift),
	)
}

// ContainerManagerConfigs is the list model for ContainerManagerConfig.
type ContainerManagerConfigs struct {
	ContainerManagers []*ContainerManagerConfig `json:"container_managers"`
}

func NewContainerManagerConfigs() *ContainerManagerConfigs {
	return &ContainerManagerConfigs{ContainerManagers: []*ContainerManagerConfig{}}
}

func (l *ContainerManagerConfigs) TypeName() string   { return "ContainerManagerConfigs" }
func (l *ContainerManagerConfigs) PrimaryKey() string { return "" }
func (l *ContainerManagerConfigs) Validate() error    { return validateItems(l.ContainerManagers) }
func (l *ContainerManagerConfigs) NewItem() Model     { return NewContainerManagerConfig() }

func (l *ContainerManagerConfigs) Items() []Model {
	out := make([]Model, len(l.ContainerManagers))
	for i, c := range l.ContainerManagers {
		out[i] = c
	}
	return out
}

func (l *ContainerManagerConfigs) SetItems(items []Model) error {
	configs := make([]*ContainerManagerConfig, 0, len(items))
	for _, item := range items {
		c, ok := item.(*ContainerManagerConfig)
		if !ok {
			return fmt.Errorf("ContainerManagerConfigs cannot hold %T", item)
		}
		configs = append(configs, c)
	}
	l.ContainerManagers = configs
	return nil
}

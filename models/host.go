/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
)

// Host status values
const (
	HostStatusInvestigating = "investigating"
	HostStatusBootstrapping = "bootstrapping"
	HostStatusActive        = "active"
	HostStatusInactive      = "inactive"
	HostStatusDisassociated = "disassociated"
	HostStatusFailed        = "failed"
)

var hostStatuses = []string{
	HostStatusInvestigating,
	HostStatusBootstrapping,
	HostStatusActive,
	HostStatusInactive,
	HostStatusDisassociated,
	HostStatusFailed,
}

// Host is a machine managed by commissaire.
type Host struct {
	Address    string `json:"address"`
	Status     string `json:"status"`
	OS         string `json:"os"`
	CPUs       int    `json:"cpus"`
	Memory     int    `json:"memory"`
	Space      int    `json:"space"`
	LastCheck  string `json:"last_check"`
	SSHPrivKey string `json:"ssh_priv_key"`
	RemoteUser string `json:"remote_user"`
	// Source names the store handler that owns this particular host.
	// Empty means the handler registered for the Host type.
	Source string `json:"source"`
}

// NewHost returns a Host with defaults applied.
func NewHost() *Host {
	return &Host{
		CPUs:       -1,
		Memory:     -1,
		Space:      -1,
		RemoteUser: "root",
	}
}

func (h *Host) TypeName() string   { return "Host" }
func (h *Host) PrimaryKey() string { return h.Address }

func (h *Host) SecureFields() []string { return []string{"ssh_priv_key"} }

func (h *Host) Validate() error {
	return firstError(
		requireAddress("Host", "address", h.Address),
		optionalOneOf("Host", "status", h.Status, hostStatuses...),
		atLeast("Host", "cpus", h.CPUs, -1),
		atLeast("Host", "memory", h.Memory, -1),
		atLeast("Host", "space", h.Space, -1),
		optionalDateTime("Host", "last_check", h.LastCheck),
	)
}

// Hosts is the list model for Host.
type Hosts struct {
	Hosts []*Host `json:"hosts"`
}

func NewHosts() *Hosts { return &Hosts{Hosts: []*Host{}} }

func (l *Hosts) TypeName() string   { return "Hosts" }
func (l *Hosts) PrimaryKey() string { return "" }
func (l *Hosts) Validate() error    { return validateItems(l.Hosts) }
func (l *Hosts) NewItem() Model     { return NewHost() }

func (l *Hosts) Items() []Model {
	out := make([]Model, len(l.Hosts))
	for i, h := range l.Hosts {
		out[i] = h
	}
	return out
}

func (l *Hosts) SetItems(items []Model) error {
	hosts := make([]*Host, 0, len(items))
	for _, item := range items {
		h, ok := item.(*Host)
		if !ok {
			return fmt.Errorf("Hosts cannot hold %T", item)
		}
		hosts = append(hosts, h)
	}
	l.Hosts = hosts
	return nil
}

// HostCreds holds the SSH credentials for a host. It is a secret model.
type HostCreds struct {
	Address    string `json:"address"`
	SSHPrivKey string `json:"ssh_priv_key"`
	RemoteUser string `json:"remote_user"`
}

func NewHostCreds() *HostCreds {
	return &HostCreds{RemoteUser: "root"}
}

func (c *HostCreds) TypeName() string       { return "HostCreds" }
func (c *HostCreds) PrimaryKey() string     { return c.Address }
func (c *HostCreds) SecureFields() []string { return []string{"ssh_priv_key"} }

func (c *HostCreds) Validate() error {
	return firstError(
		requireString("HostCreds", "address", c.Address),
		requireString("HostCreds", "remote_user", c.RemoteUser),
	)
}

// Package main provides the entry point for the SaaS foundation service.
// It wires together the cooperating managers that make up the foundation:
// a generic schema-driven datastore, role based authorization, multi-tenant
// accounts and users, subscription tiers billed through a payment gateway
// adapter, and email delivery. The service persists through gorm and exposes
// a small Fiber web surface for health checks and billing webhooks.
package main

package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invitationsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "backend",
		Name:      "invitations_total",
		Help:      "The total number of invitation state changes",
	}, []string{"action"})

	membershipsRemovedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "backend",
		Name:      "memberships_removed_total",
		Help:      "The total number of removed memberships",
	}, []string{"reason"})

	notificationsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "backend",
		Name:      "notifications_total",
		Help:      "The total number of invitation notification attempts",
	}, []string{"channel", "failed"})
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workflowEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "joblisting",
			Subsystem: "workflow",
			Name:      "events_total",
			Help:      "业务流程事件总数（投递、审批、留言、删除用户等）。",
		},
		[]string{"event"},
	)

	notificationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "joblisting",
			Subsystem: "notification",
			Name:      "published_total",
			Help:      "实时推送的通知数，按结果区分。",
		},
		[]string{"result"},
	)

	usersDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "joblisting",
			Subsystem: "account",
			Name:      "users_deleted_total",
			Help:      "级联删除的用户数，按结果区分。",
		},
		[]string{"result"},
	)
)

// 业务事件名。
const (
	EventApplicationSubmitted = "application_submitted"
	EventApplicationDecided   = "application_decided"
	EventContactSubmitted     = "contact_submitted"
	EventContactResponded     = "contact_responded"
	EventLogin                = "login"
)

// RecordWorkflowEvent 记录一次业务流程事件。
func RecordWorkflowEvent(event string) {
	workflowEventsTotal.WithLabelValues(event).Inc()
}

// RecordNotificationPublish 记录一次推送结果。
func RecordNotificationPublish(err error) {
	notificationsPublishedTotal.WithLabelValues(result(err)).Inc()
}

// RecordUserDeletion 记录一次用户级联删除的结果。
func RecordUserDeletion(err error) {
	usersDeletedTotal.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

package board

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskboard_tasks_created_total",
		Help: "Tasks created and saved locally",
	})

	tasksDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskboard_tasks_deleted_total",
		Help: "Tasks removed one by one",
	})

	validationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskboard_validation_failures_total",
		Help: "Submissions rejected by validation",
	})

	remoteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_remote_failures_total",
			Help: "Failed calls to the remote mirror",
		},
		[]string{"op"},
	)

	renderedTasks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taskboard_rendered_tasks",
		Help: "Task cards currently on the board",
	})
)

func init() {
	prometheus.MustRegister(tasksCreatedTotal, tasksDeletedTotal, validationFailuresTotal, remoteFailuresTotal, renderedTasks)
}

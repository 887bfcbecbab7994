package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var groupOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "group_operations_total", Help: "Group lifecycle operations by outcome"},
	[]string{"op", "result"},
)

var reconcileFixes = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "reconcile_fixes_total", Help: "Counter drift repaired by the reconciler"},
	[]string{"kind"},
)

func init() { prometheus.MustRegister(groupOps, reconcileFixes) }

// observe 记录一次操作结果；业务拒绝与系统错误分开统计
func observe(op string, err error, businessErrs ...error) {
	result := "ok"
	if err != nil {
		result = "error"
		for _, be := range businessErrs {
			if errors.Is(err, be) {
				result = "rejected"
				break
			}
		}
	}
	groupOps.WithLabelValues(op, result).Inc()
}

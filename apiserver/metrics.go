// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kddclf_prediction_requests_total",
			Help: "Total number of prediction requests",
		},
		[]string{"model", "status"},
	)

	predictedLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kddclf_predicted_labels_total",
			Help: "Total number of predicted labels by class",
		},
		[]string{"model", "label"},
	)

	predictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kddclf_prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

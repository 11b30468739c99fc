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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/czcorpus/kddclf/baseline"
	"github.com/czcorpus/kddclf/records"
	"github.com/czcorpus/kddclf/registry"
	"github.com/czcorpus/kddclf/stats"
	"github.com/gin-gonic/gin"
)

type modelInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Info string `json:"info"`
}

type predictionResponse struct {
	Model        string `json:"model"`
	Predictions  []int  `json:"predictions"`
	NumMalicious int    `json:"numMalicious"`
}

type historyItem struct {
	ID        string  `json:"id"`
	Datetime  string  `json:"datetime"`
	Model     string  `json:"model"`
	Input     string  `json:"input"`
	NumRows   int     `json:"numRows"`
	TN        int     `json:"tn"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	TP        int     `json:"tp"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

func (api *apiServer) handleVersion(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, api.version)
}

func (api *apiServer) handleModels(ctx *gin.Context) {
	entries := api.registry.Entries()
	ans := make([]modelInfo, len(entries))
	for i, e := range entries {
		ans[i] = modelInfo{Name: e.Name, Kind: e.Handle.Kind(), Info: e.Handle.Info()}
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// unknownModelLabel is used in metrics for requests with
// a model name not found in the registry
const unknownModelLabel = "unknown"

func errorStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, registry.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrSchema):
		return http.StatusBadRequest
	case errors.Is(err, baseline.ErrMissingColumn):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (api *apiServer) handlePredict(ctx *gin.Context) {
	t0 := time.Now()
	modelLabel := unknownModelLabel
	status := http.StatusOK
	defer func() {
		predictionRequests.WithLabelValues(modelLabel, strconv.Itoa(status)).Inc()
		predictionDuration.WithLabelValues(modelLabel).Observe(time.Since(t0).Seconds())
	}()

	entry, err := api.registry.ResolveEntry(ctx.Param("model"))
	if err != nil {
		status = errorStatus(err)
		uniresp.RespondWithErrorJSON(ctx, err, status)
		return
	}
	modelLabel = entry.Name
	handle := entry.Handle
	body := http.MaxBytesReader(ctx.Writer, ctx.Request.Body, api.conf.MaxRequestBodyBytes)
	table, err := records.Read(body)
	if err != nil {
		status = errorStatus(err)
		uniresp.RespondWithErrorJSON(ctx, fmt.Errorf("failed to read records: %w", err), status)
		return
	}
	predictions, err := api.orchestrator.Predict(handle, table)
	if err != nil {
		status = errorStatus(err)
		uniresp.RespondWithErrorJSON(ctx, err, status)
		return
	}
	numMalicious := predictions.NumPositive()
	predictedLabels.WithLabelValues(modelLabel, "1").Add(float64(numMalicious))
	predictedLabels.WithLabelValues(modelLabel, "0").Add(float64(len(predictions) - numMalicious))
	uniresp.WriteJSONResponse(
		ctx.Writer,
		predictionResponse{
			Model:        entry.Name,
			Predictions:  predictions,
			NumMalicious: numMalicious,
		},
	)
}

func (api *apiServer) handleHistory(ctx *gin.Context) {
	if api.db == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("evaluation history is not configured"), http.StatusNotFound)
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", 20)
	if !ok {
		return
	}
	filter := stats.ListFilter{}.SetLimit(limit)
	if m := ctx.Query("model"); m != "" {
		filter = filter.SetModel(m)
	}
	recs, err := api.db.GetLatestEvaluations(filter)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	loc := api.conf.Location()
	ans := make([]historyItem, len(recs))
	for i, rec := range recs {
		ans[i] = historyItem{
			ID:        rec.ID,
			Datetime:  rec.Datetime.In(loc).Format(time.RFC3339),
			Model:     rec.Model,
			Input:     rec.Input,
			NumRows:   rec.NumRows,
			TN:        rec.Matrix.TN,
			FP:        rec.Matrix.FP,
			FN:        rec.Matrix.FN,
			TP:        rec.Matrix.TP,
			Accuracy:  rec.Matrix.Accuracy(),
			Precision: rec.Matrix.Precision(),
			Recall:    rec.Matrix.Recall(),
		}
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pemfcapi

import (
	"context"
	"io"

	"github.com/carverauto/pemfcradar/pkg/models"
)

//go:generate mockgen -destination=mock_client.go -package=pemfcapi github.com/carverauto/pemfcradar/pkg/pemfcapi Service

// Service is the remote PEMFC API as seen by the dashboard.
type Service interface {
	// ListClientDevices returns every device registered to a client.
	ListClientDevices(ctx context.Context, clientID int64) ([]models.Device, error)
	ClientName(ctx context.Context, clientID int64) (string, error)
	GetDevice(ctx context.Context, id int64) (*models.Device, error)
	// AllRecords returns the full record history, oldest first.
	AllRecords(ctx context.Context, id int64) ([]models.SensorRecord, error)
	// RecentRecords returns the latest 600 records, oldest first.
	RecentRecords(ctx context.Context, id int64) ([]models.SensorRecord, error)
	Predictions(ctx context.Context, id int64, signalPath string, window int) ([]models.PredictionPoint, error)
	// ImpactMask returns an empty mask, not an error, when none was generated.
	ImpactMask(ctx context.Context, id int64, group string) (*models.ImpactMask, error)
	Rank(ctx context.Context, group string) ([]models.RankEntry, error)
	CreateDevice(ctx context.Context, req *models.RegistrationRequest) error
	DeleteDevice(ctx context.Context, id int64) error
	// ExportCSV streams the raw export. The caller closes the reader.
	ExportCSV(ctx context.Context, id int64) (io.ReadCloser, error)
}

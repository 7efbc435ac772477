package worker

// notificacion_worker.go
// Processes notification jobs from QueueNotificaciones: after a price update
// is applied, the purchasing inbox gets a plain-text summary email.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

// NotificacionPayload is the job envelope sent to QueueNotificaciones.
type NotificacionPayload struct {
	Para               string `json:"para"`
	ProveedorNombre    string `json:"proveedor_nombre"`
	NombreArchivo      string `json:"nombre_archivo"`
	ProductosAplicados int    `json:"productos_aplicados"`
	VariacionPromedio  string `json:"variacion_promedio"`
}

// NotificacionWorker sends the post-apply summary email via SMTP.
type NotificacionWorker struct {
	mailer *infra.Mailer
}

func NewNotificacionWorker(mailer *infra.Mailer) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer}
}

// Process sends the summary email. A transport error is returned so the pool
// retries the job.
func (w *NotificacionWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload NotificacionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return nil // malformed payloads never succeed on retry
	}
	if payload.Para == "" {
		log.Warn().Msg("notificacion_worker: empty destination — skipping")
		return nil
	}

	subject := fmt.Sprintf("Lista de precios aplicada — %s", payload.ProveedorNombre)
	body := fmt.Sprintf(
		"Se aplicó la lista de precios %q del proveedor %s.\n\n"+
			"Productos actualizados: %d\n"+
			"Variación promedio: %s%%\n",
		payload.NombreArchivo, payload.ProveedorNombre,
		payload.ProductosAplicados, payload.VariacionPromedio,
	)

	if err := w.mailer.SendNotificacion(payload.Para, subject, body); err != nil {
		log.Error().Err(err).Str("para", payload.Para).Msg("notificacion_worker: failed to send email")
		return err
	}
	log.Info().Str("para", payload.Para).Msg("notificacion_worker: resumen enviado")
	return nil
}

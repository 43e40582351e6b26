// Package http implements the HTTP handlers of the destaques API. Handlers
// only deal with HTTP concerns: they parse the multipart upload and form
// options, call the service layer and render JSON or attachments. Every
// failure goes through errors.ErrorHandler as an RFC 7807 problem.
//
// Routes, mounted by internal/app:
//
//	GET  /healthz                        health and readiness
//	POST /api/v1/destaques               process a workbook, JSON result
//	POST /api/v1/destaques/export        process and download csv or xlsx
//	POST /api/v1/destaques/send          process and dispatch to WhatsApp
//	GET  /api/v1/destaques/exports       list saved export files
//
// The upload is the multipart field "file". Optional form fields:
// top_n, message_top_n, omit_empty, rating_floor, max_min_investment and
// today (YYYY-MM-DD).
package http

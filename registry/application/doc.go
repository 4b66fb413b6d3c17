// Package application contém os casos de uso do registro de slots:
// registro com publicação de eventos, status de resfriamento, decisão de
// rate limit e admissão com timeout.
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application

// Package domain define os tipos, constantes e contratos do registro de slots.
//
// Este pacote não depende de net/http nem de implementações concretas
// (Redis, x/time/rate, Prometheus). As camadas application e infra dependem
// dele, nunca o contrário.
package domain

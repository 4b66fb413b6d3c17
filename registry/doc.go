// Package registry expõe o registro de slots via net/http.
//
// Visão geral (camadas):
//
//   - domain: tipos, constantes e contratos (sem dependência de net/http)
//   - application: casos de uso (registro + eventos, resfriamento, rate limit, admissão)
//   - infra: implementações concretas (registro em memória, Redis, token bucket, semáforo)
//   - registry (este pacote): rotas chi, JSON, middlewares e tradução de erros para status
//
// Fluxo de um POST /v1/slots:
//
//  1. Loga e mede a requisição
//  2. Adquire uma vaga de admissão (503 se não conseguir a tempo)
//  3. Consulta o rate limit do cliente (429 + Retry-After se bloqueado)
//  4. Chama application.Service.Register e traduz o erro para 400/409/507
//
// Variáveis de ambiente do binário (cmd/cinebund) controlam o comportamento,
// como REGISTRY_CAPACITY, RATE_RPS, CONCURRENCY_MAX e EVENTS_REDIS_ENABLED.
package registry

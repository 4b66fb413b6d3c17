// Package infra contém implementações concretas para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Registry: registro de slots em memória (mapas + contador sob um mutex)
//   - MemoryEventSink / RedisEventSink: publicação de eventos de registro
//   - LimiterStore: token bucket por cliente usando golang.org/x/time/rate
//   - NewGate: semáforo simples para limite de requisições em andamento
package infra

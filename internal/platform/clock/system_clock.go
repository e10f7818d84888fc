// Pacote clock isola a fonte de tempo para que os testes controlem os
// carimbos de criação e atualização das enquetes.
package clock

import "time"

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Agora devolve sempre UTC; os carimbos persistidos não dependem do fuso da máquina.
func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

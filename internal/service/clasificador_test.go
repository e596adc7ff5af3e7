package service_test

import (
	"testing"
	"time"

	"pedidos-hospital/internal/model"
	"pedidos-hospital/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fecha(min int) time.Time {
	return base.Add(time.Duration(min) * time.Minute)
}

func pedido(id, estado string) model.Pedido {
	return model.Pedido{PedidoID: id, Estado: estado, Habitacion: "101", Medicamento: "Paracetamol"}
}

func seguimiento(pedidoID, userID, estado string, min int) model.SeguimientoPedido {
	return model.SeguimientoPedido{PedidoID: pedidoID, UserID: userID, Estado: estado, Fecha: fecha(min)}
}

// ordena por fecha descendente, como entrega el repositorio
func descendente(segs ...model.SeguimientoPedido) []model.SeguimientoPedido {
	out := make([]model.SeguimientoPedido, len(segs))
	copy(out, segs)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Fecha.After(out[i].Fecha) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func idsDe(pedidos []service.PedidoClasificado) []string {
	out := make([]string, 0, len(pedidos))
	for _, p := range pedidos {
		out = append(out, p.PedidoID)
	}
	return out
}

func TestClasificarCelador(t *testing.T) {
	const yo = "celador-1"
	const otro = "celador-2"

	t.Run("listo para recoger va a para_recoger", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolCelador, service.EntradaClasificacion{
			Pedidos:   []model.Pedido{pedido("P1", model.EstadoListoRecoger)},
			UsuarioID: yo,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketParaRecoger]))
		assert.Empty(t, buckets[service.BucketParaEntregar])
	})

	t.Run("recogido por mí va a para_entregar, por otro no", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolCelador, service.EntradaClasificacion{
			Pedidos: []model.Pedido{
				pedido("P1", model.EstadoRecogido),
				pedido("P2", model.EstadoRecogido),
			},
			Seguimientos: descendente(
				seguimiento("P1", yo, model.EstadoRecogido, 1),
				seguimiento("P2", otro, model.EstadoRecogido, 2),
			),
			UsuarioID: yo,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketParaEntregar]))
		// P2 lo recogió otro celador: para mí no aparece en ningún bucket
		for nombre, pedidos := range buckets {
			assert.NotContains(t, idsDe(pedidos), "P2", "bucket %s", nombre)
		}
	})

	t.Run("entregado por mí sin confirmar queda en sin_confirmar_entrega", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolCelador, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoEntregado)},
			Seguimientos: descendente(
				seguimiento("P1", yo, model.EstadoRecogido, 1),
				seguimiento("P1", yo, model.EstadoEntregado, 2),
			),
			UsuarioID: yo,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketSinConfirmarEntrega]))
		assert.Empty(t, buckets[service.BucketAnteriores])
	})

	t.Run("entrega confirmada por enfermería pasa a anteriores", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolCelador, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoEntregado)},
			Seguimientos: descendente(
				seguimiento("P1", yo, model.EstadoRecogido, 1),
				seguimiento("P1", yo, model.EstadoEntregado, 2),
				seguimiento("P1", "enf-1", model.EstadoEntregado, 3),
			),
			UsuarioID: yo,
		})
		require.NoError(t, err)
		assert.Empty(t, buckets[service.BucketSinConfirmarEntrega])
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketAnteriores]))
	})

	t.Run("fecha del último cambio sale del seguimiento más reciente", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolCelador, service.EntradaClasificacion{
			Pedidos: []model.Pedido{
				pedido("P1", model.EstadoListoRecoger),
				pedido("P2", model.EstadoListoRecoger),
			},
			Seguimientos: descendente(
				seguimiento("P1", "farm-1", model.EstadoEnProceso, 1),
				seguimiento("P1", "farm-1", model.EstadoListoRecoger, 5),
			),
			UsuarioID: yo,
		})
		require.NoError(t, err)

		recoger := buckets[service.BucketParaRecoger]
		require.Len(t, recoger, 2)
		require.NotNil(t, recoger[0].FechaUltimoCambio)
		assert.Equal(t, fecha(5), *recoger[0].FechaUltimoCambio)
		// P2 no tiene seguimiento todavía
		assert.Nil(t, recoger[1].FechaUltimoCambio)
	})
}

func TestClasificarFarmacia(t *testing.T) {
	const farmaceutico = "farm-1"
	idsFarmacia := map[string]struct{}{farmaceutico: {}}

	t.Run("en proceso y listo para recoger", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolFarmacia, service.EntradaClasificacion{
			Pedidos: []model.Pedido{
				pedido("P1", model.EstadoEnProceso),
				pedido("P2", model.EstadoListoRecoger),
			},
			UsuarioID:   farmaceutico,
			IDsFarmacia: idsFarmacia,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketEnPreparacion]))
		assert.Equal(t, []string{"P2"}, idsDe(buckets[service.BucketListos]))
	})

	t.Run("recogida sin confirmar por farmacia espera confirmación", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolFarmacia, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoRecogido)},
			Seguimientos: descendente(
				seguimiento("P1", "cel-1", model.EstadoRecogido, 1),
			),
			UsuarioID:   farmaceutico,
			IDsFarmacia: idsFarmacia,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketEsperandoConfirmacion]))
		assert.Empty(t, buckets[service.BucketAnteriores])
	})

	t.Run("recogida confirmada por un usuario de farmacia pasa a anteriores", func(t *testing.T) {
		// La regla compara por pertenencia al rol farmacia, no por
		// identidad: vale la confirmación de cualquier farmacéutico.
		buckets, err := service.Clasificar(model.RolFarmacia, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoRecogido)},
			Seguimientos: descendente(
				seguimiento("P1", "cel-1", model.EstadoRecogido, 1),
				seguimiento("P1", farmaceutico, model.EstadoRecogido, 2),
			),
			UsuarioID:   "farm-2",
			IDsFarmacia: idsFarmacia,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketAnteriores]))
		assert.Empty(t, buckets[service.BucketEsperandoConfirmacion])
	})
}

func TestClasificarEnfermeria(t *testing.T) {
	const enfermera = "enf-1"

	t.Run("entregado por el celador espera la confirmación de entrega", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolEnfermeria, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoEntregado)},
			Seguimientos: descendente(
				seguimiento("P1", "cel-1", model.EstadoEntregado, 1),
			),
			UsuarioID: enfermera,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketParaConfirmarEntrega]))
		assert.Empty(t, buckets[service.BucketParaAdministrar])
	})

	t.Run("tras confirmar la entrega pasa a para_administrar", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolEnfermeria, service.EntradaClasificacion{
			Pedidos: []model.Pedido{pedido("P1", model.EstadoEntregado)},
			Seguimientos: descendente(
				seguimiento("P1", "cel-1", model.EstadoEntregado, 1),
				seguimiento("P1", enfermera, model.EstadoEntregado, 2),
			),
			UsuarioID: enfermera,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketParaAdministrar]))
		assert.Empty(t, buckets[service.BucketParaConfirmarEntrega])
	})

	t.Run("administrado va a anteriores", func(t *testing.T) {
		buckets, err := service.Clasificar(model.RolEnfermeria, service.EntradaClasificacion{
			Pedidos:   []model.Pedido{pedido("P1", model.EstadoAdministrado)},
			UsuarioID: enfermera,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketAnteriores]))
	})

	t.Run("el filtro de control descarta los pedidos de otros controles", func(t *testing.T) {
		p1 := pedido("P1", model.EstadoEntregado)
		p1.Control = "Control A"
		p2 := pedido("P2", model.EstadoEntregado)
		p2.Control = "Control B"

		buckets, err := service.Clasificar(model.RolEnfermeria, service.EntradaClasificacion{
			Pedidos:       []model.Pedido{p1, p2},
			UsuarioID:     enfermera,
			FiltroControl: "Control A",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"P1"}, idsDe(buckets[service.BucketParaConfirmarEntrega]))
	})
}

func TestClasificarRolDesconocido(t *testing.T) {
	_, err := service.Clasificar(model.RolSinRol, service.EntradaClasificacion{})
	assert.ErrorIs(t, err, service.ErrRolDesconocido)
}

// Los buckets de un mismo rol son disjuntos: cada pedido cae como mucho
// en uno porque gana la primera regla que coincide.
func TestBucketsDisjuntos(t *testing.T) {
	pedidos := []model.Pedido{
		pedido("P1", model.EstadoEnProceso),
		pedido("P2", model.EstadoListoRecoger),
		pedido("P3", model.EstadoRecogido),
		pedido("P4", model.EstadoEntregado),
		pedido("P5", model.EstadoAdministrado),
	}
	segs := descendente(
		seguimiento("P2", "farm-1", model.EstadoListoRecoger, 1),
		seguimiento("P3", "cel-1", model.EstadoRecogido, 2),
		seguimiento("P4", "cel-1", model.EstadoEntregado, 3),
		seguimiento("P4", "enf-1", model.EstadoEntregado, 4),
		seguimiento("P5", "enf-1", model.EstadoAdministrado, 5),
	)

	for _, caso := range []struct {
		rol    string
		userID string
	}{
		{model.RolFarmacia, "farm-1"},
		{model.RolCelador, "cel-1"},
		{model.RolEnfermeria, "enf-1"},
	} {
		t.Run(caso.rol, func(t *testing.T) {
			buckets, err := service.Clasificar(caso.rol, service.EntradaClasificacion{
				Pedidos:      pedidos,
				Seguimientos: segs,
				UsuarioID:    caso.userID,
				IDsFarmacia:  map[string]struct{}{"farm-1": {}},
			})
			require.NoError(t, err)

			vistos := make(map[string]string)
			for nombre, lista := range buckets {
				for _, id := range idsDe(lista) {
					previo, repetido := vistos[id]
					assert.False(t, repetido, "pedido %s en %s y %s", id, previo, nombre)
					vistos[id] = string(nombre)
				}
			}
		})
	}
}

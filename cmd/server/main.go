package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pedidos-hospital/internal/config"
	"pedidos-hospital/internal/controller"
	"pedidos-hospital/internal/middleware"
	"pedidos-hospital/internal/model"
	"pedidos-hospital/internal/rabbit"
	"pedidos-hospital/internal/repository"
	"pedidos-hospital/internal/service"
)

func main() {
	// .env local si existe; en contenedor las variables vienen puestas
	if err := godotenv.Load(); err != nil {
		log.Println("Sin fichero .env, usando entorno")
	}

	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorios y servicios
	pedidoRepo := repository.NewMongoPedidoRepository(db)
	seguimientoRepo := repository.NewMongoSeguimientoRepository(db)
	usuarioRepo := repository.NewMongoUsuarioRepository(db)
	ubicacionRepo := repository.NewMongoUbicacionRepository(db)

	pedidoService := service.NewPedidoService(pedidoRepo, seguimientoRepo, usuarioRepo, ubicacionRepo)
	authService := service.NewAuthService()

	// Handlers
	ctrl := controller.NewPedidoController(pedidoService)

	// Router
	r := gin.Default()

	// Todas las rutas requieren token; el rol sale de la colección de usuarios
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService, usuarioRepo))

	// Cualquier rol con permiso para esa transición puede avanzar estado
	auth.POST("/pedidos/:pedidoId/avanzar", ctrl.AvanzarEstado)

	// Rutas de farmacia
	farmacia := auth.Group("/")
	farmacia.Use(middleware.RequireRol(model.RolFarmacia))
	farmacia.POST("/pedidos", ctrl.CrearPedido)
	farmacia.GET("/pedidos/farmacia", ctrl.GetBucketsFarmacia)

	// Rutas de celador
	celador := auth.Group("/")
	celador.Use(middleware.RequireRol(model.RolCelador))
	celador.GET("/pedidos/celador", ctrl.GetBucketsCelador)

	// Rutas de enfermería
	enfermeria := auth.Group("/")
	enfermeria.Use(middleware.RequireRol(model.RolEnfermeria))
	enfermeria.GET("/pedidos/enfermeria", ctrl.GetBucketsEnfermeria)
	enfermeria.GET("/controles", ctrl.GetControles)

	// Conexión a RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("Error conectando a RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Error creando canal en RabbitMQ: %v", err)
	}

	rabbit.SetupConsumers(ch, pedidoService)

	// Ejecutar servidor
	log.Printf("Servicio de pedidos ejecutándose en puerto %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

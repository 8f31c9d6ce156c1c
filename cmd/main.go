package main

import (
    "os"

    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/config"
    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/routes"
    "github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"
)

func main() {
    config.InitDB()
    utils.InitOCR()

    r := routes.SetupRouter(config.DB)

    port := os.Getenv("PORT")
    if port == "" {
        port = "8080"
    }
    r.Run(":" + port)
}

/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/phux/sitemaptree/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andewx/meshvk"
)

func init() {
	// GLFW and the Vulkan loader require the main OS thread.
	runtime.LockOSThread()
}

func main() {
	modelPath := flag.String("model", "assets/viking_room.obj", "OBJ mesh to render")
	texturePath := flag.String("texture", "assets/viking_room.png", "texture image")
	shaderDir := flag.String("shaders", "shaders", "directory with compiled .spv shaders")
	width := flag.Int("width", 800, "initial window width")
	height := flag.Int("height", 600, "initial window height")
	debug := flag.Bool("debug", false, "enable validation layers")
	flag.Parse()

	if err := run(*modelPath, *texturePath, *shaderDir, *width, *height, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "meshvk: %+v\n", err)
		os.Exit(1)
	}
}

func run(modelPath, texturePath, shaderDir string, width, height int, debug bool) error {
	info := log.New(os.Stderr, "meshvk: ", log.Ltime)

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(width, height, "meshvk", nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	ctx, err := meshvk.NewCoreContext(window, "meshvk", debug, info)
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	factory := meshvk.NewCoreFactory(ctx)
	engine := meshvk.NewCoreTransition(ctx)

	swapchain := meshvk.NewCoreSwapchain(factory)
	if err := swapchain.Create(ctx); err != nil {
		return err
	}
	defer swapchain.Destroy()
	if err := swapchain.CreateDepth(ctx); err != nil {
		return err
	}

	renderPass, err := meshvk.NewRenderPass(ctx, swapchain.Format(), swapchain.DepthFormat())
	if err != nil {
		return err
	}
	if err := swapchain.CreateFramebuffers(ctx, renderPass); err != nil {
		return err
	}

	shaders := meshvk.NewCoreShader(shaderDir)
	for _, name := range []string{"shader.vert", "shader.frag"} {
		if err := shaders.Load(ctx, name); err != nil {
			return err
		}
	}

	descriptors, err := meshvk.NewCoreDescriptors(ctx)
	if err != nil {
		return err
	}
	pipeline, err := meshvk.NewCorePipeline(ctx, shaders, descriptors.Layout(), renderPass)
	if err != nil {
		return err
	}

	mesh, err := meshvk.LoadMesh(modelPath)
	if err != nil {
		return err
	}
	info.Printf("mesh: %d vertices %d indices", len(mesh.Vertices), len(mesh.Indices))

	vertices, err := meshvk.NewVertexBuffer(ctx, factory, mesh)
	if err != nil {
		return err
	}
	indices, err := meshvk.NewIndexBuffer(ctx, factory, mesh)
	if err != nil {
		return err
	}

	pixels, texWidth, texHeight, err := meshvk.LoadPixels(texturePath)
	if err != nil {
		return err
	}
	texture, err := meshvk.NewCoreTexture(ctx, factory, engine, pixels, texWidth, texHeight)
	if err != nil {
		return err
	}
	info.Printf("texture: %dx%d, %d mip levels", texWidth, texHeight, texture.MipLevels())

	frames, err := meshvk.NewCoreFrames(ctx, factory)
	if err != nil {
		return err
	}
	if err := descriptors.AllocateSets(ctx, frames, texture); err != nil {
		return err
	}

	recorder := meshvk.NewCoreRecorder(swapchain, pipeline, vertices, indices)
	loop := meshvk.NewCoreLoop(ctx, swapchain, frames, recorder, renderPass, info)
	if err := loop.Run(); err != nil {
		return err
	}

	// Swapchain resources go before the device-level registry unwinds.
	ctx.WaitIdle()
	return nil
}
